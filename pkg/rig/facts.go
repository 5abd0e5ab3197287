package rig

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/denisbrodbeck/machineid"
	"github.com/hildist/hildist/pkg/log"
)

// Facts are descriptive properties of the host the agent runs on.
type Facts map[string]string

// CollectFacts gathers the architecture, operating system, cpu count
// and, where available, the protected machine id and hostname.
func CollectFacts() Facts {
	facts := Facts{
		"arch": runtime.GOARCH,
		"os":   runtime.GOOS,
		"cpus": fmt.Sprint(runtime.NumCPU()),
	}

	if id, err := machineid.ProtectedID("hildist-worker"); err == nil {
		facts["machine_id"] = id
	}
	if hostname, err := os.Hostname(); err == nil {
		facts["hostname"] = hostname
	}

	return facts
}

func (f Facts) Log() {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	log.Info("Rig properties:")
	for _, key := range keys {
		log.Infof("  %s = %s", key, f[key])
	}
}
