package service

import (
	"errors"

	"github.com/alexanderramin/drip/internal/publish"
)

var (
	ErrNameRequired   = errors.New("campaign name is required")
	ErrCampaignExists = errors.New("campaign already exists")
	ErrInvalidImport  = errors.New("import validation failed")

	ErrNoSink           = errors.New("no plan sink configured")
	ErrPlanNotDelivered = publish.ErrNoPlan
	ErrEmptyUpdate      = errors.New("nothing to update")
)
