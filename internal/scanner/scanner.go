package scanner

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YADRO-KNS/sebastes/internal/redfish"
)

const (
	// DefaultMaxModels bounds how many nodes a scan will register.
	DefaultMaxModels = 500
	// DefaultMaxCollection bounds how many member links of one collection are followed.
	DefaultMaxCollection = 50
)

// excludedPath marks schema/meta endpoints that are never worth sampling.
const excludedPath = "jsonschemas"

// Options configures a Scanner.
type Options struct {
	// MaxModels stops registration once this many nodes were kept. Zero
	// means DefaultMaxModels.
	MaxModels int
	// MaxCollection caps how many members of a single collection are
	// followed. Zero means DefaultMaxCollection.
	MaxCollection int
	// Logger receives the structured scan trail. Nil means no logging.
	Logger *zap.Logger
	// Rand drives member sampling. Nil means a time-seeded source.
	Rand *rand.Rand
	// OnVisit, when set, is called for every URI the scanner fetches with
	// the current registered-node count. Used for progress display.
	OnVisit func(models int, uri string)
}

// Scanner performs a depth-first, budget-bounded traversal of a resource
// graph. All traversal state is shared across the recursion: one visited-URI
// set, one discovered-node list, one problem list. The visited set is what
// guarantees termination on cyclic or self-referential graphs; the node
// budget alone cannot, since unregistrable branches keep the walk going.
type Scanner struct {
	fetcher       redfish.Fetcher
	maxModels     int
	maxCollection int
	log           *zap.Logger
	rng           *rand.Rand
	onVisit       func(int, string)

	visited   map[string]struct{}
	nodes     []*Node
	problems  []Problem
	budgetHit bool
}

// New creates a Scanner over the given fetcher.
func New(fetcher redfish.Fetcher, opts Options) *Scanner {
	if opts.MaxModels <= 0 {
		opts.MaxModels = DefaultMaxModels
	}
	if opts.MaxCollection <= 0 {
		opts.MaxCollection = DefaultMaxCollection
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scanner{
		fetcher:       fetcher,
		maxModels:     opts.MaxModels,
		maxCollection: opts.MaxCollection,
		log:           opts.Logger,
		rng:           opts.Rand,
		onVisit:       opts.OnVisit,
		visited:       make(map[string]struct{}),
	}
}

// Scan traverses the graph starting at entryURI and returns every distinct
// node found plus the problems hit along the way. Scan never fails: all
// localized failures become Problems and only abandon their own branch.
func (s *Scanner) Scan(ctx context.Context, entryURI string) ([]*Node, []Problem) {
	s.visit(ctx, entryURI, nil)
	return s.nodes, s.problems
}

// Nodes returns the nodes discovered so far.
func (s *Scanner) Nodes() []*Node { return s.nodes }

// Problems returns the problems recorded so far.
func (s *Scanner) Problems() []Problem { return s.problems }

func (s *Scanner) visit(ctx context.Context, uri string, parent *Node) {
	if ctx.Err() != nil {
		return
	}
	if len(s.nodes) >= s.maxModels {
		if !s.budgetHit {
			s.budgetHit = true
			s.log.Info("model budget reached", zap.Int("max_models", s.maxModels))
		}
		return
	}
	if _, ok := s.visited[uri]; ok {
		return
	}
	if strings.Contains(strings.ToLower(uri), excludedPath) {
		return
	}
	s.visited[uri] = struct{}{}

	if parent != nil {
		s.log.Info("scanning", zap.Int("models", len(s.nodes)), zap.String("uri", uri), zap.String("parent", parent.String()))
	} else {
		s.log.Info("scanning", zap.Int("models", len(s.nodes)), zap.String("uri", uri))
	}
	if s.onVisit != nil {
		s.onVisit(len(s.nodes), uri)
	}

	sample, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		s.problems = append(s.problems, Problem{URI: uri, Description: err.Error()})
		return
	}

	// A node is registrable only when a name could be derived and it does
	// not re-declare its immediate parent's identity. Unregistrable nodes
	// still have their children explored.
	var node *Node
	if name, ok := modelName(sample); ok && (parent == nil || parent.Name != name) {
		node = NewNode(name, sample, uri, parent)
		if !s.seen(node.FullName) {
			s.nodes = append(s.nodes, node)
		}
	}

	for _, child := range s.extractURIs(sample, make(map[string]struct{})) {
		if _, ok := s.visited[child]; !ok {
			s.visit(ctx, child, node)
		}
	}
}

func (s *Scanner) seen(fullName string) bool {
	for _, n := range s.nodes {
		if n.FullName == fullName {
			return true
		}
	}
	return false
}

// modelName derives the type discriminator from the sample's type tag:
// the last dot-separated segment of @odata.type, with lowercase "collection"
// and "entry" words normalized and the first letter upper-cased.
func modelName(sample map[string]any) (string, bool) {
	tag, ok := sample["@odata.type"].(string)
	if !ok || tag == "" {
		return "", false
	}

	parts := strings.Split(tag, ".")
	value := parts[len(parts)-1]
	value = strings.ReplaceAll(value, "collection", "Collection")
	value = strings.ReplaceAll(value, "entry", "Entry")
	if value == "" {
		return "", false
	}
	return strings.ToUpper(value[:1]) + value[1:], true
}

// extractURIs walks the sample for child links: every nested @odata.id value,
// with Members arrays larger than the collection cap sampled down to the cap
// without replacement. Keys are walked in sorted order so a given seed always
// produces the same traversal.
func (s *Scanner) extractURIs(data map[string]any, seen map[string]struct{}) []string {
	var result []string

	add := func(uri string) {
		if _, ok := seen[uri]; !ok {
			seen[uri] = struct{}{}
			result = append(result, uri)
		}
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := data[key]

		if key == "@odata.id" {
			if uri, ok := value.(string); ok && uri != "" {
				add(uri)
			}
			continue
		}

		if key == "Members" {
			if members, ok := value.([]any); ok {
				for _, entry := range s.sampleMembers(members) {
					if obj, ok := entry.(map[string]any); ok {
						result = append(result, s.extractURIs(obj, seen)...)
					}
				}
				continue
			}
		}

		if obj, ok := value.(map[string]any); ok {
			result = append(result, s.extractURIs(obj, seen)...)
		}
	}
	return result
}

// sampleMembers returns all members when they fit the cap, or a uniform
// random sample without replacement when they do not.
func (s *Scanner) sampleMembers(members []any) []any {
	if len(members) <= s.maxCollection {
		return members
	}
	picked := make([]any, 0, s.maxCollection)
	for _, i := range s.rng.Perm(len(members))[:s.maxCollection] {
		picked = append(picked, members[i])
	}
	return picked
}
