// Package catalog holds the fixed plan catalog: resource tiers and prices for
// the panel accounts sold by the storefront. Pure lookup, no I/O.
package catalog

import "errors"

var ErrUnknownPlan = errors.New("unknown plan")

// Plan is a named resource tier with a fixed price.
// MemoryMB/DiskMB/CPUPercent of zero mean unlimited.
type Plan struct {
	ID         string
	MemoryMB   int
	DiskMB     int
	CPUPercent int
	Price      int64 // rupiah
}

// plans is the fixed catalog. Order matters for the pricing page.
var plans = []Plan{
	{ID: "1gb", MemoryMB: 1000, DiskMB: 1000, CPUPercent: 40, Price: 15000},
	{ID: "2gb", MemoryMB: 2000, DiskMB: 1000, CPUPercent: 60, Price: 20000},
	{ID: "3gb", MemoryMB: 3000, DiskMB: 2000, CPUPercent: 80, Price: 25000},
	{ID: "4gb", MemoryMB: 4000, DiskMB: 2000, CPUPercent: 100, Price: 30000},
	{ID: "5gb", MemoryMB: 5000, DiskMB: 3000, CPUPercent: 120, Price: 35000},
	{ID: "6gb", MemoryMB: 6000, DiskMB: 3000, CPUPercent: 140, Price: 40000},
	{ID: "7gb", MemoryMB: 7000, DiskMB: 4000, CPUPercent: 160, Price: 45000},
	{ID: "8gb", MemoryMB: 8000, DiskMB: 4000, CPUPercent: 180, Price: 50000},
	{ID: "9gb", MemoryMB: 9000, DiskMB: 5000, CPUPercent: 200, Price: 55000},
	{ID: "10gb", MemoryMB: 10000, DiskMB: 5000, CPUPercent: 220, Price: 60000},
	{ID: "unlimited", MemoryMB: 0, DiskMB: 0, CPUPercent: 0, Price: 75000},
}

var byID = func() map[string]Plan {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return m
}()

// Resolve returns the plan for the given id, or ErrUnknownPlan.
func Resolve(planID string) (Plan, error) {
	p, ok := byID[planID]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// Plans returns all plans in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}
