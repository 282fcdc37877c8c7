package debug

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
)

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

//
// Debug output is controlled by the SPRITEDEBUG environment variable,
// which can be a list of selectors (e.g., "KERNEL;PROCCLNT").
//

var (
	mu   sync.Mutex
	name = "sprite2"
)

// SetName sets the process name included in every log line.
func SetName(n string) {
	mu.Lock()
	defer mu.Unlock()
	name = n
}

func GetName() string {
	mu.Lock()
	defer mu.Unlock()
	return name
}

func debugSelectors() map[Tselector]bool {
	m := make(map[Tselector]bool)
	s := os.Getenv("SPRITEDEBUG")
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		m[Tselector(l)] = true
	}
	return m
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	m := debugSelectors()
	if _, ok := m[label]; ok || label == ALWAYS {
		log.Printf("%v %v %v", GetName(), label, fmt.Sprintf(format, v...))
	}
}

func DFatalf(format string, v ...interface{}) {
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		log.Fatalf("FATAL %v %v %v:%v %v", GetName(), fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		log.Fatalf("FATAL %v (missing details) %v", GetName(), fmt.Sprintf(format, v...))
	}
}
