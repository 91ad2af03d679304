package repository

import (
	"arenaapp/application"
	"arenaapp/database"
	"arenaapp/domain/interfaces"
)

// CreateTestUnitOfWork creates a unit of work for testing with the provided publisher
func CreateTestUnitOfWork(db *database.DB, eventPublisher interfaces.EventPublisher) application.UnitOfWork {
	return NewUnitOfWorkFactory(db).CreateWithPublisher(eventPublisher)
}
