package engine

import (
	"fmt"

	"github.com/taskdaemon/taskdaemon/internal/coordinator"
)

// pollCoordinator drains the engine's own mailbox non-blocking and acts
// on every pending message before the next iteration starts (spec.md
// §4.1 step 1; engine.rs's poll_coordinator_messages collects every
// pending message first, then processes them in arrival order). A Stop
// queued behind a main_updated Notification is acted on after that
// notification's rebase; if the rebase fails, Blocked is returned and
// the Stop is not reached in this drain.
func (e *Engine) pollCoordinator() (Outcome, bool) {
	if e.coordinator == nil {
		return Outcome{}, false
	}

	var pending []coordinator.Message
	for {
		msg, ok := e.coordinator.TryRecv()
		if !ok {
			break
		}
		pending = append(pending, msg)
	}

	for _, msg := range pending {
		switch msg.Kind {
		case coordinator.KindStop:
			reason := fmt.Sprintf("Stop requested by %s: %s", msg.From, msg.Reason)
			return Outcome{Kind: OutcomeInterrupted, Iterations: e.iteration, Reason: reason}, true

		case coordinator.KindQuery:
			answer := fmt.Sprintf("Loop %s cannot answer queries yet", e.cfg.ExecID)
			if err := e.coordinator.ReplyQuery(msg.QueryID, answer); err != nil {
				e.log.Warn("failed to reply to query", "query_id", msg.QueryID, "error", err)
			}

		case coordinator.KindShare:
			e.log.Info("received share", "from", msg.From, "share_type", msg.ShareType)

		case coordinator.KindNotification:
			if msg.EventType != "main_updated" {
				e.log.Debug("received notification", "from", msg.From, "event_type", msg.EventType)
				continue
			}
			branch := extractBranch(msg.Data, e.cfg.Branch)
			if err := e.handleRebase(branch); err != nil {
				reason := fmt.Sprintf("Rebase failed: %v", err)
				return Outcome{Kind: OutcomeBlocked, Iterations: e.iteration, Reason: reason}, true
			}
		}
	}

	return Outcome{}, false
}
