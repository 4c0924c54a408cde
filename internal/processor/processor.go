// Package processor assembles scanned nodes into the generated library:
// one source file per output unit, the canonical types package, a generated
// go.mod, and the index registering every exported model.
package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/YADRO-KNS/sebastes/internal/codegen"
	"github.com/YADRO-KNS/sebastes/internal/scanner"
)

// synthesizer is the per-unit code generation seam.
type synthesizer interface {
	Synthesize(node, child *scanner.Node) (*codegen.Result, error)
}

// Options configures a Processor.
type Options struct {
	// ModulePath is the module path of the emitted library. Empty means
	// DefaultModulePath.
	ModulePath string
	// Logger receives the generation trail. Nil means no logging.
	Logger *zap.Logger
	// OnUnit, when set, is called after every attempted unit with progress
	// counts. Used for progress display.
	OnUnit func(done, total int, unit string)
}

// Processor writes the output tree for a set of scanned nodes. Synthesis
// failures become problems and skip only their own unit; storage failures
// abort the run.
type Processor struct {
	nodes      []*scanner.Node
	outputDir  string
	modulePath string
	log        *zap.Logger
	onUnit     func(int, int, string)
	synth      synthesizer

	problems []scanner.Problem
	manifest []ManifestEntry
}

// ManifestEntry records the exported names one output unit declares.
type ManifestEntry struct {
	Unit  string
	Names []string
}

// New creates a Processor emitting into outputDir.
func New(nodes []*scanner.Node, outputDir string, opts Options) *Processor {
	if opts.ModulePath == "" {
		opts.ModulePath = DefaultModulePath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Processor{
		nodes:      nodes,
		outputDir:  outputDir,
		modulePath: opts.ModulePath,
		log:        opts.Logger,
		onUnit:     opts.OnUnit,
		synth:      codegen.NewSynthesizer(opts.ModulePath),
	}
}

// Problems returns the synthesis problems accumulated so far.
func (p *Processor) Problems() []scanner.Problem { return p.problems }

// Manifest returns the manifest entries recorded so far, the canonical
// entry first.
func (p *Processor) Manifest() []ManifestEntry { return p.manifest }

// Generate builds the whole output tree. Elements are processed together
// with their collections first, so the collection's element accessor and the
// element type land in one unit; every remaining node becomes a solo unit.
func (p *Processor) Generate() error {
	if err := p.prepareLayout(); err != nil {
		return err
	}

	p.manifest = []ManifestEntry{{Unit: "redfish", Names: canonicalNames}}

	plans := p.planUnits()
	for i, plan := range plans {
		if err := p.processUnit(plan); err != nil {
			return err
		}
		if p.onUnit != nil {
			p.onUnit(i+1, len(plans), plan.node.FileName)
		}
	}

	return p.writeIndex()
}

// unitPlan is one output unit to synthesize: a collection with its element,
// or a solitary node.
type unitPlan struct {
	node  *scanner.Node
	child *scanner.Node
}

// planUnits decides the unit batching. Both halves of a pair count as
// processed up front, whether or not the pair later synthesizes; identity is
// the full name, matching node equality.
func (p *Processor) planUnits() []unitPlan {
	processed := make(map[string]struct{})
	var plans []unitPlan

	for _, node := range p.nodes {
		if node.Category() != scanner.CategoryElement || node.Parent == nil {
			continue
		}
		if _, ok := processed[node.FullName]; ok {
			continue
		}
		if _, ok := processed[node.Parent.FullName]; ok {
			continue
		}
		processed[node.FullName] = struct{}{}
		processed[node.Parent.FullName] = struct{}{}
		plans = append(plans, unitPlan{node: node.Parent, child: node})
	}

	for _, node := range p.nodes {
		if _, ok := processed[node.FullName]; ok {
			continue
		}
		processed[node.FullName] = struct{}{}
		plans = append(plans, unitPlan{node: node})
	}

	return plans
}

// processUnit synthesizes one unit and writes it out. In a pair the element
// is synthesized first and rendered above its collection; either half
// failing skips the pair entirely.
func (p *Processor) processUnit(plan unitPlan) error {
	var results []*codegen.Result

	if plan.child != nil {
		childResult, err := p.synth.Synthesize(plan.child, nil)
		if err != nil {
			p.fail(plan.child, err)
			return nil
		}
		parentResult, err := p.synth.Synthesize(plan.node, plan.child)
		if err != nil {
			p.fail(plan.node, err)
			return nil
		}
		results = append(results, childResult, parentResult)
	} else {
		result, err := p.synth.Synthesize(plan.node, nil)
		if err != nil {
			p.fail(plan.node, err)
			return nil
		}
		results = append(results, result)
	}

	if err := p.writeUnit(plan.node.FileName, results); err != nil {
		return err
	}

	var names []string
	for _, r := range results {
		names = append(names, r.Names...)
	}
	p.manifest = append(p.manifest, ManifestEntry{Unit: plan.node.FileName, Names: names})
	p.log.Info("unit written", zap.String("unit", plan.node.FileName), zap.Strings("models", names))
	return nil
}

// fail records a synthesis problem attributing the node and its raw sample.
func (p *Processor) fail(node *scanner.Node, err error) {
	p.log.Warn("unit skipped", zap.String("model", node.String()), zap.Error(err))
	p.problems = append(p.problems, scanner.Problem{
		URI:         node.URI,
		Description: fmt.Sprintf("synthesis failed: %v; sample: %v", err, node.Sample),
	})
}

// prepareLayout resets the models directory and writes the fixed parts of
// the output tree: the canonical package and the library go.mod.
func (p *Processor) prepareLayout() error {
	modelsDir := filepath.Join(p.outputDir, "models")
	if err := os.RemoveAll(modelsDir); err != nil {
		return fmt.Errorf("reset models directory: %w", err)
	}
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	redfishDir := filepath.Join(p.outputDir, "redfish")
	if err := os.MkdirAll(redfishDir, 0755); err != nil {
		return fmt.Errorf("create redfish directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(redfishDir, "redfish.go"), []byte(canonicalSource), 0644); err != nil {
		return fmt.Errorf("write canonical types: %w", err)
	}

	gomod := fmt.Sprintf("module %s\n\ngo 1.21\n", p.modulePath)
	if err := os.WriteFile(filepath.Join(p.outputDir, "go.mod"), []byte(gomod), 0644); err != nil {
		return fmt.Errorf("write go.mod: %w", err)
	}
	return nil
}

// writeUnit persists one unit file: the generated header, merged imports,
// and the synthesized bodies in order.
func (p *Processor) writeUnit(fileName string, results []*codegen.Result) error {
	lists := make([][]codegen.Import, 0, len(results))
	for _, r := range results {
		lists = append(lists, r.Imports)
	}
	imports := codegen.MergeImports(lists...)

	var b strings.Builder
	b.WriteString(generatedHeader)
	b.WriteString("package models\n\n")
	if len(imports) > 0 {
		b.WriteString("import (\n")
		for _, imp := range imports {
			if imp.Alias != "" {
				fmt.Fprintf(&b, "\t%s %q\n", imp.Alias, imp.Path)
			} else {
				fmt.Fprintf(&b, "\t%q\n", imp.Path)
			}
		}
		b.WriteString(")\n\n")
	}
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Body)
	}

	path := filepath.Join(p.outputDir, "models", fileName+".go")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write unit %s: %w", fileName, err)
	}
	return nil
}
