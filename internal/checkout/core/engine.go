package core

import (
	"fmt"
	"time"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hotelbook/checkout"

type Flow interface {
	Name() string
	Steps() []*Step
}

// Engine runs named flows step by step. The first failing step aborts the
// flow and its error is returned as is.
type Engine struct {
	flows  map[string]Flow
	tracer trace.Tracer
	log    *logger.Logger
}

func NewEngine(log *logger.Logger, flows ...Flow) *Engine {
	m := make(map[string]Flow, len(flows))
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{
		flows:  m,
		tracer: otel.Tracer(tracerName),
		log:    log,
	}
}

func (e *Engine) Flows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	return names
}

func (e *Engine) Run(flowName string, fc *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return apperrors.Internal("Unsupported checkout flow", fmt.Errorf("unsupported flow: %v", flowName))
	}

	ctx, span := e.tracer.Start(fc.Context(), "checkout."+flowName,
		trace.WithAttributes(attribute.String("user.id", fc.Principal.ID)))
	defer span.End()
	fc.ctx = ctx

	start := time.Now()
	log := e.log.WithContext(ctx)

	for _, step := range f.Steps() {
		if err := e.runStep(fc, step); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Info("Checkout flow aborted",
				"flow", flowName,
				"step", step.Name,
				"error", err,
				"duration", time.Since(start),
			)
			return err
		}
	}

	if fc.Booking != nil {
		span.SetAttributes(
			attribute.String("booking.id", fc.Booking.ID),
			attribute.String("booking.stage", string(fc.Booking.Stage())),
		)
	}
	span.SetStatus(codes.Ok, flowName+" completed")
	log.Debug("Checkout flow completed", "flow", flowName, "duration", time.Since(start))
	return nil
}

func (e *Engine) runStep(fc *FlowContext, step *Step) error {
	parent := fc.ctx
	ctx, span := e.tracer.Start(parent, "step."+step.Name)
	defer span.End()

	fc.ctx = ctx
	defer func() { fc.ctx = parent }()

	if err := step.Execute(fc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
