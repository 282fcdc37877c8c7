package hosted

import (
	"net"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mem"
)

// Netsys is the hosted networking module.
type Netsys struct {
	mu     sync.Mutex
	routes []string
}

func NewNetsys() *Netsys {
	return &Netsys{}
}

// Bin registers the network buffer bins; must run before the general
// allocator is initialized.
func (n *Netsys) Bin(a *mem.Allocator) error {
	return a.Bin("net", []int{128, 1500, 9000})
}

func (n *Netsys) Init() error {
	db.DPrintf(db.NET, "Init")
	return nil
}

// RouteInit seeds the route table from the host's interfaces.
func (n *Netsys) RouteInit() error {
	ifs, err := net.Interfaces()
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, i := range ifs {
		n.routes = append(n.routes, i.Name)
	}
	db.DPrintf(db.NET, "route table: %v", n.routes)
	return nil
}

func (n *Netsys) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.routes...)
}
