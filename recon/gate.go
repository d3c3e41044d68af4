/*
gate.go - Apply gate

PURPOSE:
  A pure decision over one parse result plus the caller's lock state.
  Applying is allowed only when all three hold:

    - zero blocking errors          (reason BLOCKING_ERRORS)
    - at least one resolved column  (reason NO_MAPPED_EMPLOYEES)
    - the target period not locked  (reason PERIOD_LOCKED)

  Every failing condition contributes its reason; the caller gets the
  complete blocker list in one pass, not just the first.

  The lock check is a read of caller state taken at call time. The engine
  holds no lock itself; any race between this evaluation and a later write
  must be closed by the caller (re-check the lock inside the same
  transaction that persists - see store/sqlite.ApplyRecords).
*/
package recon

import "github.com/warp/sales-recon/sheet"

type Reason string

const (
	ReasonBlockingErrors    Reason = "BLOCKING_ERRORS"
	ReasonNoMappedEmployees Reason = "NO_MAPPED_EMPLOYEES"
	ReasonPeriodLocked      Reason = "PERIOD_LOCKED"
)

// Decision is the gate's verdict. Reasons is empty exactly when Allowed.
type Decision struct {
	Allowed bool     `json:"allowed"`
	Reasons []Reason `json:"reasons,omitempty"`
}

// CanApply evaluates the gate for one parse result.
func CanApply(res *sheet.ParseResult, periodLocked bool) Decision {
	var reasons []Reason
	if res.Blocked() {
		reasons = append(reasons, ReasonBlockingErrors)
	}
	if len(res.ResolvedColumns()) == 0 {
		reasons = append(reasons, ReasonNoMappedEmployees)
	}
	if periodLocked {
		reasons = append(reasons, ReasonPeriodLocked)
	}
	return Decision{Allowed: len(reasons) == 0, Reasons: reasons}
}
