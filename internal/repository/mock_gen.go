// internal/repository/mock_gen.go
package repository

//go:generate mockgen -source=./opportunity.go -destination=../mocks/mock_opportunity_repository.go -package=mocks OpportunityRepositoryIface
//go:generate mockgen -source=./access.go -destination=../mocks/mock_access_repository.go -package=mocks AccessRepositoryIface
//go:generate mockgen -source=./file.go -destination=../mocks/mock_file_repository.go -package=mocks FileRepositoryIface
//go:generate mockgen -source=./profile.go -destination=../mocks/mock_profile_repository.go -package=mocks ProfileRepositoryIface
//go:generate mockgen -source=./user.go -destination=../mocks/mock_user_repository.go -package=mocks UserRepositoryIface
//go:generate mockgen -source=./user_factor.go -destination=../mocks/mock_user_factor_repository.go -package=mocks UserFactorRepositoryIface
//go:generate mockgen -source=./audit_log.go -destination=../mocks/mock_audit_log_repository.go -package=mocks AuditLogRepositoryIface
