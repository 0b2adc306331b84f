package consul

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
)

// ConsulSource serves values below a prefix of the Consul KV store. Consul
// limits values to 512KB, which suits rules overlays and palettes.
type ConsulSource struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulSourceConfig

	// lower-cased entry name -> kv key
	keys *btree.Map[string, string]
}

type ConsulSourceConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Namespace for Consul Enterprise (optional)
	Namespace string

	// Prefix of all asset keys (default: "cncmaps/")
	Prefix string
}

func NewConsulSource(config *ConsulSourceConfig) (*ConsulSource, error) {
	if config == nil {
		config = &ConsulSourceConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "cncmaps/"
	}
	if !strings.HasSuffix(config.Prefix, "/") {
		config.Prefix += "/"
	}
	config.Prefix = strings.TrimPrefix(config.Prefix, "/")

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	clientConfig.Token = config.Token
	clientConfig.Datacenter = config.Datacenter
	clientConfig.Namespace = config.Namespace

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulSource{
		client: client,
		kv:     client.KV(),
		config: config,
		keys:   btree.NewMap[string, string](0),
	}, nil
}

func (cs *ConsulSource) Name() string {
	return "consul://" + cs.config.Address + "/" + cs.config.Prefix
}

func (cs *ConsulSource) Open(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	keys, _, err := cs.kv.Keys(cs.config.Prefix, "", (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return err
	}

	for _, key := range keys {
		name := strings.TrimPrefix(key, cs.config.Prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		cs.keys.Set(strings.ToLower(name), key)
	}

	return nil
}

func (cs *ConsulSource) Close(ctx context.Context) error {
	return nil
}

func (cs *ConsulSource) Contains(name string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, ok := cs.keys.Get(strings.ToLower(name))
	return ok
}

func (cs *ConsulSource) Entries() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.keys.Keys()
}

func (cs *ConsulSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	cs.mu.RLock()
	key, ok := cs.keys.Get(strings.ToLower(name))
	cs.mu.RUnlock()

	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	pair, _, err := cs.kv.Get(key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	return pair.Value, nil
}
