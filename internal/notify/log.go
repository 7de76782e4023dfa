package notify

import (
	"context"

	"courier-dispatch/internal/logx"
)

// LogGateway only logs notifications. It is used when no transport is configured.
type LogGateway struct {
	logger logx.Logger
}

// NewLogGateway creates a logging gateway. A nil logger discards.
func NewLogGateway(logger logx.Logger) *LogGateway {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogGateway{logger: logger}
}

// AlertPartner implements Gateway.
func (g *LogGateway) AlertPartner(_ context.Context, a Alert) error {
	g.logger.Info("partner alert",
		logx.String("order_id", a.OrderID),
		logx.String("partner_id", a.PartnerID),
		logx.Float64("distance_km", a.DistanceKm),
		logx.Time("deadline", a.Deadline),
	)
	return nil
}

// NotifyOutcome implements Gateway.
func (g *LogGateway) NotifyOutcome(_ context.Context, o Outcome) error {
	g.logger.Info("order taken notice",
		logx.String("order_id", o.OrderID),
		logx.Strings("partner_ids", o.PartnerIDs),
		logx.String("accepted_partner_id", o.AcceptedPartnerID),
	)
	return nil
}

var _ Gateway = (*LogGateway)(nil)
