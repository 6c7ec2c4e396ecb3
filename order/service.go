package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klineo/interfaces"
	"klineo/logger"
	"klineo/models"
)

var ErrInvalidOrder = errors.New("order rejected by validation")

// Service validates orders, places the valid ones and records both in the order log
type Service struct {
	validator *Validator
	placer    interfaces.OrderPlacer
	log       interfaces.OrderLog
	now       func() time.Time
}

func NewService(exchange interfaces.ExchangeClient, log interfaces.OrderLog) *Service {
	return &Service{
		validator: NewValidator(exchange),
		placer:    exchange,
		log:       log,
		now:       time.Now,
	}
}

// Check is the dry run: validate and record, never place
func (s *Service) Check(ctx context.Context, req models.OrderRequest) (models.ValidationResult, error) {
	res, err := s.validator.Validate(ctx, req)
	if err != nil {
		return res, err
	}
	s.record(req, res, 0)
	return res, nil
}

// Place validates the request and submits it when valid. An invalid request
// returns the validation result together with ErrInvalidOrder.
func (s *Service) Place(ctx context.Context, req models.OrderRequest) (models.ValidationResult, int64, error) {
	res, err := s.validator.Validate(ctx, req)
	if err != nil {
		return res, 0, err
	}
	if !res.Valid {
		s.record(req, res, 0)
		return res, 0, fmt.Errorf("%w: %s", ErrInvalidOrder, res.Error)
	}

	orderID, err := s.placer.PlaceOrder(ctx, *res.Normalized)
	if err != nil {
		failed := res
		failed.Valid = false
		failed.Error = err.Error()
		s.record(req, failed, 0)
		return failed, 0, err
	}
	s.record(req, res, orderID)
	return res, orderID, nil
}

func (s *Service) record(req models.OrderRequest, res models.ValidationResult, orderID int64) {
	check := models.OrderCheck{
		Symbol:       req.Symbol,
		Side:         string(req.Side),
		Type:         string(req.Type),
		RequestedQty: req.Quantity,
		QuoteQty:     req.QuoteOrderQty,
		Valid:        res.Valid,
		Error:        res.Error,
		OrderID:      orderID,
		Timestamp:    s.now().UTC(),
	}
	if n := res.Normalized; n != nil {
		check.Symbol = n.Symbol
		check.Side = string(n.Side)
		check.Type = string(n.Type)
		check.Quantity = n.Quantity
		check.Price = n.Price
		check.Notional = n.Notional
	}

	entry := logger.WithFields(logger.Fields{
		"symbol": check.Symbol,
		"side":   check.Side,
		"qty":    check.Quantity,
		"valid":  check.Valid,
	})
	if check.Valid {
		entry.Info("order checked")
	} else {
		entry.WithField("error", check.Error).Warn("order rejected")
	}
	for _, w := range res.Warnings {
		entry.Warn(w)
	}

	if s.log == nil {
		return
	}
	if _, err := s.log.LogOrderCheck(check); err != nil {
		logger.Errorf("Failed to record order check for %s: %v", check.Symbol, err)
	}
}
