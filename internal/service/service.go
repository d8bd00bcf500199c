// Package service implements the conversation and report flows.
package service

import (
	"github.com/pracare/backend/internal/adapter/ai"
	"github.com/pracare/backend/internal/config"
	store "github.com/pracare/backend/internal/repository"
	"github.com/pracare/backend/policy"
)

type Service struct {
	store        store.Store
	gateway      *ai.Gateway
	config       *config.Config
	policyEngine *policy.Engine
}

func New(store store.Store, gateway *ai.Gateway, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		gateway:      gateway,
		config:       cfg,
		policyEngine: policyEngine,
	}
}
