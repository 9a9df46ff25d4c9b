package worldgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"airogue/internal/debug"
	"airogue/internal/logging"
)

// Stage names the ordered steps of the content pipeline.
type Stage string

const (
	StageTheme     Stage = "theme"
	StageTitle     Stage = "title"
	StagePlot      Stage = "plot"
	StageMechanics Stage = "mechanics"
	StageItems     Stage = "items"
	StageAssembled Stage = "assembled"
)

// PipelineConfig parameterizes one pipeline instance.
type PipelineConfig struct {
	Model       string
	Temperature float64
	Concurrency int // parallel per-mechanic item calls; min 1
	Debug       *debug.Logger
	Log         *logging.GenerationLogger
	Rand        *rand.Rand
}

// Pipeline chains the five stage generators in dependency order:
// theme -> title -> plot -> mechanics -> items -> assembled. Each Generate
// call owns its design-document accumulator, so concurrent runs share no
// state.
type Pipeline struct {
	themes      *ThemeGenerator
	titles      *TitleGenerator
	plots       *PlotGenerator
	mechanics   *MechanicsGenerator
	items       *ItemsGenerator
	concurrency int
	debug       *debug.Logger
	tracer      trace.Tracer
}

func NewPipeline(c Completer, cfg PipelineConfig) *Pipeline {
	opts := Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Debug:       cfg.Debug,
		Log:         cfg.Log,
		Rand:        cfg.Rand,
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Pipeline{
		themes:      NewThemeGenerator(c, opts),
		titles:      NewTitleGenerator(c, opts),
		plots:       NewPlotGenerator(c, opts),
		mechanics:   NewMechanicsGenerator(c, opts),
		items:       NewItemsGenerator(c, opts),
		concurrency: concurrency,
		debug:       cfg.Debug,
		tracer:      otel.Tracer("worldgen"),
	}
}

// Generate runs the full pipeline and returns one immutable WorldModel.
// Cancellation is cooperative at every stage boundary; no partial model is
// ever returned. userContext optionally steers theme selection.
func (p *Pipeline) Generate(ctx context.Context, userContext string) (*WorldModel, error) {
	ctx, span := p.tracer.Start(ctx, "worldgen.pipeline")
	defer span.End()

	var designDoc strings.Builder

	theme, batch, err := p.runThemeStage(ctx, userContext)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("worldgen.theme", theme),
		attribute.Int("worldgen.theme_batch_size", len(batch.Themes)),
	)

	title, err := p.runTitleStage(ctx, theme)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&designDoc, "Theme: %s\n", theme)
	fmt.Fprintf(&designDoc, "Title: %s\n", title)

	plot, err := p.runPlotStage(ctx, theme, title)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&designDoc, "Plot: %s\n", plot)

	mechanics, err := p.runMechanicsStage(ctx, theme, title, plot)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&designDoc, "Game mechanics:\n%s\n", mechanics.String())

	allItems, err := p.runItemsStage(ctx, mechanics, designDoc.String())
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := &WorldModel{
		Theme:          theme,
		Title:          title,
		Plot:           plot,
		Mechanics:      mechanics,
		Items:          allItems,
		GlobalEntities: map[string]EntityTemplate{},
	}
	if err := model.Validate(); err != nil {
		return nil, &StageError{Stage: StageAssembled, Err: err}
	}

	span.SetAttributes(
		attribute.Int("worldgen.mechanic_count", len(mechanics.Mechanics)),
		attribute.Int("worldgen.item_count", len(allItems.Items)),
	)

	return model, nil
}

func (p *Pipeline) runThemeStage(ctx context.Context, userContext string) (string, ThemeBatch, error) {
	if err := ctx.Err(); err != nil {
		return "", ThemeBatch{}, err
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.stage.theme")
	defer span.End()

	theme, batch, err := p.themes.Generate(ctx, userContext)
	if err != nil {
		span.RecordError(err)
		return "", ThemeBatch{}, wrapStage(StageTheme, err)
	}
	return theme, batch, nil
}

func (p *Pipeline) runTitleStage(ctx context.Context, theme string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.stage.title")
	defer span.End()

	title, err := p.titles.Generate(ctx, theme)
	if err != nil {
		span.RecordError(err)
		return "", wrapStage(StageTitle, err)
	}
	return title, nil
}

func (p *Pipeline) runPlotStage(ctx context.Context, theme, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.stage.plot")
	defer span.End()

	plot, err := p.plots.Generate(ctx, theme, title)
	if err != nil {
		span.RecordError(err)
		return "", wrapStage(StagePlot, err)
	}
	return plot, nil
}

func (p *Pipeline) runMechanicsStage(ctx context.Context, theme, title, plot string) (Mechanics, error) {
	if err := ctx.Err(); err != nil {
		return Mechanics{}, err
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.stage.mechanics")
	defer span.End()

	mechanics, err := p.mechanics.Generate(ctx, theme, title, plot)
	if err != nil {
		span.RecordError(err)
		return Mechanics{}, wrapStage(StageMechanics, err)
	}
	return mechanics, nil
}

// runItemsStage fans out one item call per mechanic, bounded by the
// configured concurrency, and joins the results in input-mechanic order
// regardless of completion order. Item names are deduplicated globally,
// first occurrence wins.
func (p *Pipeline) runItemsStage(ctx context.Context, mechanics Mechanics, designDoc string) (Items, error) {
	if err := ctx.Err(); err != nil {
		return Items{}, err
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.stage.items")
	defer span.End()

	mechs := mechanics.Mechanics
	results := make([]Items, len(mechs))
	errs := make([]error, len(mechs))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, mech := range mechs {
		wg.Add(1)
		go func(i int, mech Mechanic) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = p.items.Generate(ctx, mech, designDoc)
		}(i, mech)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			span.RecordError(err)
			return Items{}, wrapStage(StageItems, err)
		}
	}

	all := Items{Items: []Item{}}
	seen := make(map[string]struct{})
	for _, batch := range results {
		for _, item := range batch.Items {
			if _, dup := seen[item.Name]; dup {
				p.debug.Printf("items: dropping duplicate item name %q", item.Name)
				continue
			}
			seen[item.Name] = struct{}{}
			all.Items = append(all.Items, item)
		}
	}

	return all, nil
}

func wrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	raw := ""
	var exErr *ExtractionError
	if errors.As(err, &exErr) {
		raw = exErr.Raw
	}
	return &StageError{Stage: stage, Raw: raw, Err: err}
}
