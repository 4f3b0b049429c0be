package services

import (
	"gorm.io/gorm"

	"aidocs/internal/repositories"
)

// Services aggregates the use cases sharing one Runtime.
type Services struct {
	Runtime  *Runtime
	Init     InitService
	Plans    PlanService
	Generate GenerateService
	Audit    AuditService
	Models   ModelConfigService
	Keys     *KeyringService
}

// NewServices wires the use cases around rt.
func NewServices(rt *Runtime, catalog ModelConfigService, keys *KeyringService) *Services {
	plans := NewPlanService(rt)
	return &Services{
		Runtime:  rt,
		Init:     NewInitService(rt),
		Plans:    plans,
		Generate: NewGenerateService(rt, plans),
		Audit:    NewAuditService(rt, plans),
		Models:   catalog,
		Keys:     keys,
	}
}

// DbServices holds the stores backed by the history database.
type DbServices struct {
	Runs          repositories.RunRepository
	ModelSettings repositories.ModelSettingRepository
}

func NewDbServices(db *gorm.DB) *DbServices {
	return &DbServices{
		Runs:          repositories.NewRunRepository(db),
		ModelSettings: repositories.NewModelSettingRepository(db),
	}
}
