package value

import "sync"

// interner deduplicates string backing storage process-wide. String
// values are immutable and frequently repeated (identifiers turned into
// map keys, small literals), so a single shared table keeps the VM's
// working set small without needing per-Value reference counting.
var (
	internMu    sync.Mutex
	internTable = make(map[string]string)
)

func intern(s string) string {
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := internTable[s]; ok {
		return existing
	}
	internTable[s] = s
	return s
}
