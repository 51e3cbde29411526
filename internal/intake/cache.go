package intake

// recencyCache is a fixed-capacity ring of recently seen match IDs. It
// only saves storage round-trips for IDs the provider re-lists within a
// few sweeps; the storage lookup stays authoritative for dedup.
type recencyCache struct {
	slots []string
	next  int
	full  bool
}

func newRecencyCache(capacity int) *recencyCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &recencyCache{slots: make([]string, capacity)}
}

func (c *recencyCache) Contains(id string) bool {
	n := c.next
	if c.full {
		n = len(c.slots)
	}
	for i := 0; i < n; i++ {
		if c.slots[i] == id {
			return true
		}
	}
	return false
}

// Push records an ID, evicting the oldest entry once at capacity.
func (c *recencyCache) Push(id string) {
	c.slots[c.next] = id
	c.next++
	if c.next == len(c.slots) {
		c.next = 0
		c.full = true
	}
}
