package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"
)

// MemoryStore is an in-memory backing store for the arena repositories.
// Reads return copies so callers observe the same isolation a database gives them.
type MemoryStore struct {
	mu           sync.Mutex
	arena        *entities.Arena
	participants map[string]*entities.Participant
	contests     map[int64]*entities.Contest
	wagers       []*entities.Wager
	escrows      map[int64]*entities.Escrow
	transfers    []*entities.Transfer
	nextWagerID  int64
	nextTransfer int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]*entities.Participant),
		contests:     make(map[int64]*entities.Contest),
		escrows:      make(map[int64]*entities.Escrow),
	}
}

func (s *MemoryStore) ArenaRepository() interfaces.ArenaRepository {
	return &memoryArenaRepository{s}
}

func (s *MemoryStore) ParticipantRepository() interfaces.ParticipantRepository {
	return &memoryParticipantRepository{s}
}

func (s *MemoryStore) ContestRepository() interfaces.ContestRepository {
	return &memoryContestRepository{s}
}

func (s *MemoryStore) WagerRepository() interfaces.WagerRepository {
	return &memoryWagerRepository{s}
}

func (s *MemoryStore) EscrowRepository() interfaces.EscrowRepository {
	return &memoryEscrowRepository{s}
}

func (s *MemoryStore) TransferRepository() interfaces.TransferRepository {
	return &memoryTransferRepository{s}
}

// Transfers returns every journalled transfer in order
func (s *MemoryStore) Transfers() []entities.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Transfer, 0, len(s.transfers))
	for _, t := range s.transfers {
		out = append(out, *t)
	}
	return out
}

// SetEscrowBalance overwrites an escrow balance, for corrupting state in tests
func (s *MemoryStore) SetEscrowBalance(contestID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.escrows[contestID]; ok {
		e.Balance = balance
	}
}

type memoryArenaRepository struct{ s *MemoryStore }

func (r *memoryArenaRepository) Get(ctx context.Context) (*entities.Arena, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.arena == nil {
		return nil, nil
	}
	a := *r.s.arena
	return &a, nil
}

func (r *memoryArenaRepository) Create(ctx context.Context, arena *entities.Arena) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.arena != nil {
		return entities.ErrArenaAlreadyInitialized
	}
	a := *arena
	r.s.arena = &a
	return nil
}

func (r *memoryArenaRepository) NextContestID(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.arena == nil {
		return 0, entities.ErrArenaNotInitialized
	}
	r.s.arena.ContestCount++
	return r.s.arena.ContestCount, nil
}

func (r *memoryArenaRepository) AddVolume(ctx context.Context, amount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.arena == nil {
		return entities.ErrArenaNotInitialized
	}
	volume, err := entities.CheckedAdd(r.s.arena.TotalVolume, amount)
	if err != nil {
		return err
	}
	r.s.arena.TotalVolume = volume
	return nil
}

type memoryParticipantRepository struct{ s *MemoryStore }

func (r *memoryParticipantRepository) GetByIdentity(ctx context.Context, identity string) (*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[identity]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[participant.Identity]; ok {
		return entities.ErrParticipantExists
	}
	cp := *participant
	r.s.participants[participant.Identity] = &cp
	return nil
}

func (r *memoryParticipantRepository) Update(ctx context.Context, participant *entities.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[participant.Identity]; !ok {
		return entities.ErrParticipantNotFound
	}
	cp := *participant
	r.s.participants[participant.Identity] = &cp
	return nil
}

func (r *memoryParticipantRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Participant, 0, len(r.s.participants))
	for _, p := range r.s.participants {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Identity < out[j].Identity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryParticipantRepository) List(ctx context.Context, limit int) ([]*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Participant, 0, len(r.s.participants))
	for _, p := range r.s.participants {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].Identity < out[j].Identity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryContestRepository struct{ s *MemoryStore }

func copyContest(c *entities.Contest) *entities.Contest {
	cp := *c
	if c.Winner != nil {
		w := *c.Winner
		cp.Winner = &w
	}
	return &cp
}

func (r *memoryContestRepository) Create(ctx context.Context, contest *entities.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contests[contest.ID] = copyContest(contest)
	return nil
}

func (r *memoryContestRepository) GetByID(ctx context.Context, id int64) (*entities.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, nil
	}
	return copyContest(c), nil
}

func (r *memoryContestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Contest, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryContestRepository) Update(ctx context.Context, contest *entities.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[contest.ID]; !ok {
		return entities.ErrContestNotFound
	}
	r.s.contests[contest.ID] = copyContest(contest)
	return nil
}

func (r *memoryContestRepository) List(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Contest, 0, len(r.s.contests))
	for _, c := range r.s.contests {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, copyContest(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryWagerRepository struct{ s *MemoryStore }

func (r *memoryWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wagers {
		if w.ContestID == wager.ContestID && w.Bettor == wager.Bettor {
			return entities.ErrDuplicateWager
		}
	}
	r.s.nextWagerID++
	wager.ID = r.s.nextWagerID
	cp := *wager
	r.s.wagers = append(r.s.wagers, &cp)
	return nil
}

func (r *memoryWagerRepository) GetByContestAndBettor(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wagers {
		if w.ContestID == contestID && w.Bettor == bettor {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryWagerRepository) GetByContestAndBettorForUpdate(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error) {
	return r.GetByContestAndBettor(ctx, contestID, bettor)
}

func (r *memoryWagerRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Wager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Wager
	for _, w := range r.s.wagers {
		if w.ContestID == contestID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryWagerRepository) MarkVoted(ctx context.Context, wagerID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wagers {
		if w.ID == wagerID {
			if w.HasVoted {
				return false, nil
			}
			w.HasVoted = true
			return true, nil
		}
	}
	return false, entities.ErrWagerNotFound
}

func (r *memoryWagerRepository) MarkClaimed(ctx context.Context, wagerID int64, payout int64, claimedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wagers {
		if w.ID == wagerID {
			if w.Claimed {
				return false, nil
			}
			w.MarkClaimed(payout, claimedAt)
			return true, nil
		}
	}
	return false, entities.ErrWagerNotFound
}

type memoryEscrowRepository struct{ s *MemoryStore }

func (r *memoryEscrowRepository) Create(ctx context.Context, contestID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.escrows[contestID] = &entities.Escrow{ContestID: contestID}
	return nil
}

func (r *memoryEscrowRepository) Get(ctx context.Context, contestID int64) (*entities.Escrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.escrows[contestID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memoryEscrowRepository) Adjust(ctx context.Context, contestID int64, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.escrows[contestID]
	if !ok {
		return 0, entities.ErrContestNotFound
	}
	balance, err := entities.CheckedAdd(e.Balance, delta)
	if err != nil {
		return 0, err
	}
	if balance < 0 {
		return 0, entities.ErrEscrowOverdrawn
	}
	e.Balance = balance
	return balance, nil
}

type memoryTransferRepository struct{ s *MemoryStore }

func (r *memoryTransferRepository) Transfer(ctx context.Context, transfer *entities.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTransfer++
	transfer.ID = r.s.nextTransfer
	cp := *transfer
	r.s.transfers = append(r.s.transfers, &cp)
	return nil
}

func (r *memoryTransferRepository) GetByContest(ctx context.Context, contestID int64) ([]*entities.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Transfer
	for _, t := range r.s.transfers {
		if t.ContestID == contestID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}
