package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/ratchet/pkg/builder"
	"github.com/platinummonkey/ratchet/pkg/config"
	"github.com/platinummonkey/ratchet/pkg/generator"
	"github.com/platinummonkey/ratchet/pkg/normalize"
	"github.com/platinummonkey/ratchet/pkg/protoimport"
	"github.com/platinummonkey/ratchet/pkg/render"
	"github.com/platinummonkey/ratchet/pkg/shape"
	"github.com/platinummonkey/ratchet/pkg/storage"
)

func main() {
	schemaPath := flag.String("schema", "", "Schema document (.json) or protobuf file (.proto) to compile")
	outDir := flag.String("out", "", "Output directory (overrides ratchet.yaml)")
	configPath := flag.String("config", "", "Path to ratchet.yaml (default: nearest in parent directories)")
	watch := flag.Bool("watch", false, "Watch the schema file and regenerate on change")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "Delay before regenerating after a change")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	log := logrus.WithField("component", "ratchet")
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *schemaPath == "" {
		log.Fatal("missing required -schema flag")
	}

	cfgPath := *configPath
	if cfgPath == "" {
		if found, ok := config.FindProjectConfig(filepath.Dir(*schemaPath)); ok {
			cfgPath = found
		}
	}
	cfg, err := config.LoadProjectConfig(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load project config")
	}
	if *outDir != "" {
		cfg.Generate.OutputDir = *outDir
	}

	if err := generate(log, *schemaPath, cfg); err != nil {
		log.WithError(err).Fatal("generation failed")
	}

	if *watch {
		if err := watchLoop(log, *schemaPath, cfg, *debounce); err != nil {
			log.WithError(err).Fatal("watch failed")
		}
	}
}

// generate runs one full pipeline pass and writes the output files
func generate(log *logrus.Entry, schemaPath string, cfg *config.ProjectConfig) error {
	start := time.Now()

	graph, err := loadGraph(schemaPath)
	if err != nil {
		return err
	}
	if len(cfg.Generate.Roots) > 0 {
		graph, err = shape.WithRoots(graph, cfg.Generate.Roots)
		if err != nil {
			return err
		}
	}

	run, err := generator.NewRun(graph, &generator.Options{
		Normalize: &normalize.Config{MaxNameAttempts: cfg.Generate.MaxNameAttempts},
		Builder:   &builder.Config{PublicSetters: cfg.Generate.PublicSetters},
	})
	if err != nil {
		return err
	}
	log.WithField("run_id", run.ID).
		WithField("shapes", run.Graph().Len()).
		Debug("pipeline prepared")

	renderer := render.NewRenderer(&render.Config{
		Package:    cfg.Generate.Package,
		MaxWorkers: cfg.Generate.MaxWorkers,
	})
	files, err := renderer.RenderAll(context.Background(), run)
	if err != nil {
		return err
	}

	store, err := storage.NewFileSystemStore(cfg.Generate.OutputDir)
	if err != nil {
		return err
	}
	if err := store.WriteFiles(files); err != nil {
		return err
	}

	log.WithField("files", len(files)).
		WithField("duration", time.Since(start)).
		Info("generation complete")
	return nil
}

// loadGraph reads a schema graph from a JSON document or a proto file
func loadGraph(path string) (*shape.Graph, error) {
	if strings.HasSuffix(path, ".proto") {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		importer := protoimport.NewImporter()
		return importer.ImportSource(context.Background(), filepath.Base(path), string(content))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return shape.Load(data)
}

// watchLoop regenerates whenever the schema file changes, debounced so a
// burst of editor writes produces one run
func watchLoop(log *logrus.Entry, schemaPath string, cfg *config.ProjectConfig, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file, which drops a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(schemaPath)); err != nil {
		return err
	}
	log.WithField("schema", schemaPath).Info("watching for changes")

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(schemaPath) {
				continue
			}
			log.WithField("file", event.Name).Debug("schema changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			if err := generate(log, schemaPath, cfg); err != nil {
				log.WithError(err).Error("regeneration failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("watcher error")
		}
	}
}
