package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	StudentRepository      *StudentRepository
	DepartmentRepository   *DepartmentRepository
	SectionRepository      *SectionRepository
	ViolationRepository    *ViolationRepository
	ReportRepository       *ReportRepository
	AnnouncementRepository *AnnouncementRepository
	SettingRepository      *SettingRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		StudentRepository:      NewStudentRepository(db),
		DepartmentRepository:   NewDepartmentRepository(db),
		SectionRepository:      NewSectionRepository(db),
		ViolationRepository:    NewViolationRepository(db),
		ReportRepository:       NewReportRepository(db),
		AnnouncementRepository: NewAnnouncementRepository(db),
		SettingRepository:      NewSettingRepository(db),
	}
}
