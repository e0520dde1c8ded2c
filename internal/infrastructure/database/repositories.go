package database

import (
	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all gorm-backed repository instances
type Repositories struct {
	Team       domainRepo.TeamRepository
	UserTeam   domainRepo.UserTeamRepository
	User       domainRepo.UserRepository
	Transactor domainRepo.Transactor
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Team:       repository.NewTeamRepository(db, logger),
		UserTeam:   repository.NewUserTeamRepository(db, logger),
		User:       repository.NewUserRepository(db, logger),
		Transactor: repository.NewTransactor(db, logger),
	}
}
