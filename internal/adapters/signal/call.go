package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

// Call negotiation is pure forwarding: the sender names a target
// connection id, the relay stamps its own id as "from" and passes the
// SDP blob through untouched. Nothing here checks that the target is a
// connection the registry knows; sendTo drops frames for unknown ids.

func (ctl *Controller) handleUserCall(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		To    domain.ConnID   `json:"to"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" || len(p.Offer) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad user:call payload")
		return
	}
	ctl.sendTo(p.To, "incomming:call", struct {
		From  domain.ConnID   `json:"from"`
		Offer json.RawMessage `json:"offer"`
	}{sid, p.Offer})
}

func (ctl *Controller) handleCallAccepted(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		To  domain.ConnID   `json:"to"`
		Ans json.RawMessage `json:"ans"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" || len(p.Ans) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad call:accepted payload")
		return
	}
	ctl.sendTo(p.To, "call:accepted", struct {
		From domain.ConnID   `json:"from"`
		Ans  json.RawMessage `json:"ans"`
	}{sid, p.Ans})
}

func (ctl *Controller) handleNegoNeeded(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		To    domain.ConnID   `json:"to"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" || len(p.Offer) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad peer:nego:needed payload")
		return
	}
	ctl.sendTo(p.To, "peer:nego:needed", struct {
		From  domain.ConnID   `json:"from"`
		Offer json.RawMessage `json:"offer"`
	}{sid, p.Offer})
}

// The renegotiation answer is the one event renamed on delivery:
// peer:nego:done in, peer:nego:final out.
func (ctl *Controller) handleNegoDone(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		To  domain.ConnID   `json:"to"`
		Ans json.RawMessage `json:"ans"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" || len(p.Ans) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad peer:nego:done payload")
		return
	}
	ctl.sendTo(p.To, "peer:nego:final", struct {
		From domain.ConnID   `json:"from"`
		Ans  json.RawMessage `json:"ans"`
	}{sid, p.Ans})
}

// Hangup is advisory: it carries only the end timestamp and leaves the
// registry and rooms alone. Extra fields from the sender are dropped.
func (ctl *Controller) handleHangup(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		To      domain.ConnID   `json:"to"`
		EndTime json.RawMessage `json:"endTime"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" || len(p.EndTime) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad call:hangup payload")
		return
	}
	ctl.sendTo(p.To, "call:hangup", struct {
		EndTime json.RawMessage `json:"endTime"`
	}{p.EndTime})
}

func (ctl *Controller) handleExchangePhoneNo(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		PhoneNo domain.PhoneNo `json:"phoneNo"`
		ID      domain.ConnID  `json:"Id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.PhoneNo == "" || p.ID == "" {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad exchangePhoneNo payload")
		return
	}
	ctl.sendTo(p.ID, "receivePhoneNo", struct {
		PhoneNo domain.PhoneNo `json:"phoneNo"`
	}{p.PhoneNo})
}

func (ctl *Controller) handleRemoteCallStart(sid domain.ConnID, data json.RawMessage) {
	var p struct {
		ID         domain.ConnID   `json:"Id"`
		StartTimer json.RawMessage `json:"startTimer"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" || len(p.StartTimer) == 0 {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad setRemoteCallStart payload")
		return
	}
	ctl.sendTo(p.ID, "setCallStart", struct {
		StartTimer json.RawMessage `json:"startTimer"`
	}{p.StartTimer})
}
