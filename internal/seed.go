package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	CompanyName   = "NetPath Network AI"
	CompanyDomain = "netpath.edu"
	Version       = "2.0.0"
)

var SupportedTopics = []string{
	"OSPF", "BGP", "TCP/IP", "Subnetting", "VLANs",
	"Network Security", "Routing Protocols", "Switching",
	"Firewall", "VPN", "DNS", "DHCP", "Troubleshooting",
}

var DefaultKnowledge = []KnowledgeEntry{
	{Key: "namaste", Answer: "Namaste! Main NetPath Network AI hoon. Aap koi bhi networking question puchh sakte hain - OSPF, BGP, subnetting, VLANs, network security, etc.!"},
	{Key: "hello", Answer: "Hello! I'm NetPath Network AI. How can I help you with networking topics today?"},
	{Key: "help", Answer: "Main aapki networking, routing protocols, switching, security, aur troubleshooting mein madad kar sakta hoon!"},
	{Key: "netpath", Answer: "NetPath Network AI - Advanced Network Engineering Education Platform for Students."},
	{Key: "company", Answer: "NetPath Network AI - Empowering students with advanced networking knowledge."},
	{Key: "ospf", Answer: "OSPF (Open Shortest Path First) is a link-state interior gateway protocol. Every router floods LSAs, builds the same link-state database and runs Dijkstra's SPF algorithm to compute the shortest path tree. It supports areas (area 0 is the backbone), fast convergence and cost-based metrics."},
	{Key: "bgp", Answer: "BGP (Border Gateway Protocol) is the path-vector protocol that routes between autonomous systems on the Internet. Peers exchange prefixes over TCP port 179 and pick routes using attributes such as weight, local preference, AS path length and MED."},
	{Key: "vlan", Answer: "A VLAN splits one physical switch into several logical broadcast domains. Access ports carry a single VLAN; trunk ports carry many VLANs using 802.1Q tags. Traffic between VLANs needs a router or a layer 3 switch."},
	{Key: "subnetting", Answer: "Subnetting divides an IP network into smaller networks by borrowing host bits for the network part. Example: 192.168.1.0/24 split into /26 gives four subnets of 64 addresses each (62 usable hosts)."},
	{Key: "dhcp", Answer: "DHCP hands out IP configuration automatically using the DORA exchange: Discover, Offer, Request, Acknowledge. The lease carries the address, subnet mask, default gateway and DNS servers."},
	{Key: "dns", Answer: "DNS translates names into IP addresses. A resolver queries root, TLD and authoritative servers in turn and caches answers for their TTL. Common records: A, AAAA, CNAME, MX, NS, TXT."},
	{Key: "vpn", Answer: "A VPN builds an encrypted tunnel over an untrusted network. Site-to-site VPNs join whole networks (often IPsec); remote-access VPNs connect single users (IPsec, SSL/TLS or WireGuard)."},
	{Key: "firewall", Answer: "A firewall filters traffic by policy. Packet filters check addresses and ports, stateful firewalls track connections, and next-generation firewalls also inspect applications and users."},
	{Key: "http", Answer: "HTTP is the request/response protocol of the web, normally over TCP port 80. HTTPS wraps HTTP in TLS on port 443 so the traffic is encrypted and the server is authenticated by its certificate."},
	{Key: "tcp/ip", Answer: "TCP/IP is the Internet protocol suite: link, internet (IP), transport (TCP/UDP) and application layers. TCP gives reliable ordered delivery with a three-way handshake; UDP is connectionless and lighter."},
}

// DefaultKeywordRules is evaluated top to bottom; earlier rules win.
var DefaultKeywordRules = []KeywordRule{
	{Pattern: "ospf", Key: "ospf"},
	{Pattern: "bgp", Key: "bgp"},
	{Pattern: "vlan", Key: "vlan"},
	{Pattern: "subnet", Key: "subnetting"},
	{Pattern: "dhcp", Key: "dhcp"},
	{Pattern: "dns", Key: "dns"},
	{Pattern: "vpn", Key: "vpn"},
	{Pattern: "firewall", Key: "firewall"},
	{Pattern: "http", Key: "http"},
	{Pattern: "tcp", Key: "tcp/ip"},
}

type KnowledgeFileEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// KnowledgeFile is the on-disk seed format.
type KnowledgeFile struct {
	Entries []KnowledgeFileEntry `yaml:"entries"`
	Rules   []KeywordRule        `yaml:"rules,omitempty"`
}

func LoadKnowledgeFile(path string) (*KnowledgeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}

	var kf KnowledgeFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}
	return &kf, nil
}

func (kf *KnowledgeFile) KnowledgeEntries() []KnowledgeEntry {
	out := make([]KnowledgeEntry, 0, len(kf.Entries))
	for _, e := range kf.Entries {
		key, err := NewKey(e.Question)
		if err != nil {
			continue
		}
		out = append(out, KnowledgeEntry{Key: key, Answer: e.Answer})
	}
	return out
}

// Apply upserts the file's entries into store and replaces its keyword rules
// when the file declares any. It returns the number of entries applied.
func (kf *KnowledgeFile) Apply(store *KnowledgeStore) (int, error) {
	applied := 0
	for _, e := range kf.KnowledgeEntries() {
		if _, err := store.Upsert(e.Key, e.Answer); err != nil {
			return applied, fmt.Errorf("upsert %q: %w", e.Key, err)
		}
		applied++
	}
	if len(kf.Rules) > 0 {
		store.SetRules(kf.Rules)
	}
	return applied, nil
}

// NewSeededStore builds the store from the built-in seed plus an optional knowledge file.
func NewSeededStore(path string, maxEntries int) (*KnowledgeStore, error) {
	store := NewKnowledgeStore(DefaultKnowledge,
		WithRules(DefaultKeywordRules),
		WithMaxEntries(maxEntries),
	)
	if path == "" {
		return store, nil
	}

	kf, err := LoadKnowledgeFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := kf.Apply(store); err != nil {
		return nil, fmt.Errorf("apply knowledge file: %w", err)
	}
	return store, nil
}
