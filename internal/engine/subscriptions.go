package engine

import (
	"context"
	"encoding/json"

	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
)

// SetupSubscriptions clears the score cache whenever the inventory reports a
// vehicle change, since cached agent scores are keyed by vehicle.
func (e *Engine) SetupSubscriptions(ctx context.Context) error {
	if e.hermes == nil || e.cache == nil {
		return nil
	}
	return e.hermes.Subscribe(hermes.SubjectInventoryChanged, func(subject string, data []byte) {
		var evt hermes.InventoryChangedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			e.logger.Warn("invalid inventory event", "subject", subject, "error", err)
			return
		}
		if err := e.cache.Clear(ctx); err != nil {
			e.logger.Warn("cache clear after inventory change failed", "vehicle_id", evt.VehicleID, "error", err)
			return
		}
		e.logger.Info("score cache cleared", "vehicle_id", evt.VehicleID, "change", evt.Change)
	})
}
