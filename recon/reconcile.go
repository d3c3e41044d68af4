/*
Package recon diffs parsed sheet facts against a persisted ledger and
decides whether a parse result may be applied.

PURPOSE:
  The reconciliation engine is a pure, total function over two keyed maps
  of (date, employee) -> amount: one produced by the sheet parser, one
  loaded by the caller from persisted state. It reports exactly three
  disjoint finding kinds - missing in store, extra in store, mismatched -
  and stays silent about keys whose amounts agree.

DESIGN PRINCIPLES:
  1. Opaque keys: The engine knows nothing about dates or employees beyond
     ordering the composite key for deterministic output
  2. Exact equality: Amounts are minor-unit integers; no tolerance or
     rounding is applied by default. A separate, explicitly parameterized
     variant exists for surfaces that tolerate rounding drift.
  3. No zero special-casing: Whether zero-amount facts become map entries
     is the caller's decision; the engine treats them like any other value

USAGE:
  file := recon.FileMap(parseResult, false)
  store, _ := ledgerStore.LedgerMap(ctx, boutiqueID, period)
  diff := recon.Reconcile(file, store)

SEE ALSO:
  - gate.go: The apply decision consuming the same parse result
  - sheet:   Produces the file-side records
*/
package recon

import (
	"sort"

	"github.com/warp/sales-recon/sheet"
)

// =============================================================================
// KEY - Composite (date, employee) with total order
// =============================================================================

// Key aligns facts from two independently produced record sets. Ordering is
// date first, then employee ID, so diff output is reproducible across runs.
type Key struct {
	DateKey    string `json:"date_key"`
	EmployeeID string `json:"employee_id"`
}

// Less defines the total order used for deterministic iteration.
func (k Key) Less(o Key) bool {
	if k.DateKey != o.DateKey {
		return k.DateKey < o.DateKey
	}
	return k.EmployeeID < o.EmployeeID
}

// =============================================================================
// DIFF ENTRIES
// =============================================================================

type DiffKind string

const (
	MissingInStore DiffKind = "missing_in_store" // in file, not in store
	ExtraInStore   DiffKind = "extra_in_store"   // in store, not in file
	Mismatch       DiffKind = "mismatch"         // in both, amounts differ
)

// DiffEntry is one reconciliation finding. FileAmount is meaningful for
// MissingInStore and Mismatch, StoreAmount for ExtraInStore and Mismatch;
// Delta (file minus store, signed) only for Mismatch.
type DiffEntry struct {
	Kind        DiffKind `json:"kind"`
	Key         Key      `json:"key"`
	FileAmount  int64    `json:"file_amount,omitempty"`
	StoreAmount int64    `json:"store_amount,omitempty"`
	Delta       int64    `json:"delta,omitempty"`
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Reconcile computes the deterministic diff between file and store maps
// with exact amount equality. Keys present in both with equal amounts emit
// nothing.
func Reconcile(file, store map[Key]int64) []DiffEntry {
	return reconcile(file, store, 0)
}

// ReconcileWithTolerance is the explicitly parameterized variant for
// surfaces that accept rounding drift: amounts within +/- band currency
// units compare equal. Missing and extra findings are unaffected by the
// band. A band of 0 is identical to Reconcile.
func ReconcileWithTolerance(file, store map[Key]int64, band int64) []DiffEntry {
	if band < 0 {
		band = -band
	}
	return reconcile(file, store, band)
}

func reconcile(file, store map[Key]int64, band int64) []DiffEntry {
	var diff []DiffEntry
	for _, k := range unionKeys(file, store) {
		fileAmt, inFile := file[k]
		storeAmt, inStore := store[k]

		switch {
		case inFile && !inStore:
			diff = append(diff, DiffEntry{Kind: MissingInStore, Key: k, FileAmount: fileAmt})
		case !inFile && inStore:
			diff = append(diff, DiffEntry{Kind: ExtraInStore, Key: k, StoreAmount: storeAmt})
		default:
			delta := fileAmt - storeAmt
			if delta > band || delta < -band {
				diff = append(diff, DiffEntry{
					Kind:        Mismatch,
					Key:         k,
					FileAmount:  fileAmt,
					StoreAmount: storeAmt,
					Delta:       delta,
				})
			}
		}
	}
	return diff
}

// unionKeys returns every key from both maps exactly once, in the total
// order defined by Key.Less.
func unionKeys(file, store map[Key]int64) []Key {
	keys := make([]Key, 0, len(file)+len(store))
	for k := range file {
		keys = append(keys, k)
	}
	for k := range store {
		if _, dup := file[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary counts findings by kind plus the signed net of all mismatch
// deltas, for report surfaces.
type Summary struct {
	Missing    int   `json:"missing_in_store"`
	Extra      int   `json:"extra_in_store"`
	Mismatched int   `json:"mismatched"`
	NetDelta   int64 `json:"net_delta"`
}

func Summarize(diff []DiffEntry) Summary {
	var s Summary
	for _, e := range diff {
		switch e.Kind {
		case MissingInStore:
			s.Missing++
		case ExtraInStore:
			s.Extra++
		case Mismatch:
			s.Mismatched++
			s.NetDelta += e.Delta
		}
	}
	return s
}

// =============================================================================
// FILE-SIDE MAP CONSTRUCTION
// =============================================================================

// FileMap materializes a parse result's records as a reconciliation map.
// Duplicate (date, employee) pairs - possible when a monthly sheet repeats
// a date - are summed. Zero-amount records become entries only when
// includeZero is set; the engine itself never special-cases zero.
func FileMap(res *sheet.ParseResult, includeZero bool) map[Key]int64 {
	m := make(map[Key]int64, len(res.Records))
	for _, rec := range res.Records {
		if rec.AmountMinorUnits == 0 && !includeZero {
			continue
		}
		m[Key{DateKey: rec.DateKey, EmployeeID: rec.EmployeeID}] += rec.AmountMinorUnits
	}
	return m
}
