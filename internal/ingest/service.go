package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vidingest/internal/config"
	"vidingest/internal/fileutil"
	"vidingest/internal/ingestcache"
	"vidingest/internal/ingestspec"
	"vidingest/internal/logging"
	"vidingest/internal/media/audio"
	"vidingest/internal/media/ffprobe"
	"vidingest/internal/media/frames"
	"vidingest/internal/procrun"
	"vidingest/internal/subtitles"
	"vidingest/internal/timeline"
)

// Service runs the ingest pipeline against one cache root.
type Service struct {
	logger       *slog.Logger
	runner       procrun.Runner
	filesDir     string
	defaults     ingestspec.Options
	ffprobe      string
	probeTimeout time.Duration
	layout       ingestcache.Layout
	cache        *ingestcache.Cache
	manager      *ingestcache.Manager
	autoPrune    bool
	frames       frames.Extractor
	audio        audio.Extractor
	transcripts  subtitles.Loader
	flights      singleflight.Group
	now          func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRunner replaces the process runner used for ffmpeg and ffprobe.
func WithRunner(r procrun.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithStore replaces the manifest store. The default is the on-disk store
// under the configured cache directory.
func WithStore(store ingestcache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.cache = ingestcache.New(store, s.logger)
		}
	}
}

// NewService builds a Service from cfg.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ingest")
	manager := ingestcache.NewManager(cfg.Paths.CacheDir, cfg.CacheMaxBytes(), logger)
	s := &Service{
		logger:       logger,
		runner:       procrun.Exec{Logger: logger},
		filesDir:     cfg.Paths.FilesDir,
		defaults:     DefaultOptions(cfg),
		ffprobe:      cfg.Tools.FFprobe,
		probeTimeout: cfg.ProbeTimeout(),
		layout:       manager.Store().Layout,
		cache:        ingestcache.New(manager.Store(), logger),
		manager:      manager,
		autoPrune:    cfg.Cache.AutoPrune,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frames = frames.Extractor{Runner: s.runner, FFmpeg: cfg.Tools.FFmpeg, Timeout: cfg.FFmpegTimeout(), Logger: logger}
	s.audio = audio.Extractor{Runner: s.runner, FFmpeg: cfg.Tools.FFmpeg, Language: cfg.Ingest.AudioLanguage, Timeout: cfg.FFmpegTimeout(), Logger: logger}
	s.transcripts = subtitles.Loader{Logger: logger}
	return s
}

// DefaultOptions returns the configured sampling defaults, themselves
// normalised against the built-in ones.
func DefaultOptions(cfg *config.Config) ingestspec.Options {
	if cfg == nil {
		return ingestspec.DefaultOptions()
	}
	return ingestspec.Options{
		FrameIntervalSec:    cfg.Ingest.FrameIntervalSec,
		MaxFrames:           cfg.Ingest.MaxFrames,
		SegmentDurationSec:  cfg.Ingest.SegmentDurationSec,
		MaxAudioDurationSec: cfg.Ingest.MaxAudioDurationSec,
	}.Normalize(ingestspec.DefaultOptions())
}

// Defaults returns the options applied to fields a caller leaves invalid.
func (s *Service) Defaults() ingestspec.Options {
	return s.defaults
}

// Ingest returns the cached result for source under opts, computing it on a
// miss. Invalid option fields take the service defaults. Concurrent requests
// for the same content and options share one run; cancelling ctx only stops
// this caller from waiting on it.
func (s *Service) Ingest(ctx context.Context, source Source, opts ingestspec.Options) (ingestspec.Result, error) {
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldFileID, source.ID))

	if !source.IsVideo() {
		return ingestspec.Result{}, fmt.Errorf("%w: %q is %s", ErrUnsupportedFileType, source.label(), kindLabel(source))
	}
	path, err := source.Resolve(s.filesDir)
	if err != nil {
		return ingestspec.Result{}, fmt.Errorf("%w: %q (path %q, files dir %q)", err, source.label(), source.Path, s.filesDir)
	}
	opts = opts.Normalize(s.defaults)

	key, err := fileutil.HashFile(path)
	if err != nil {
		return ingestspec.Result{}, fmt.Errorf("hash source: %w", err)
	}
	ctx = logging.WithCacheKey(ctx, key)
	logger = logger.With(logging.String(logging.FieldCacheKey, key))

	if result, ok := s.cache.Lookup(ctx, key, opts); ok {
		return rebind(result, source, path), nil
	}

	// The shared run outlives any single caller: it is detached from
	// cancellation and keeps only the configured tool timeouts. Each caller
	// stops waiting when its own ctx ends.
	flight := s.flights.DoChan(flightKey(key, opts), func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), key, source, path, opts)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		logger.Info("ingest abandoned by caller; shared run continues", logging.Error(ctx.Err()))
		return ingestspec.Result{}, ctx.Err()
	case res = <-flight:
	}
	value, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		logging.ErrorWithContext(logger, "ingest failed", "ingest_failed",
			logging.Error(err),
			logging.String("source_path", path),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		return ingestspec.Result{}, err
	}
	result := value.(ingestspec.Result)
	if shared {
		logger.Debug("joined in-flight ingest", logging.Args(logging.DecisionAttrs("ingest_flight", "shared", "same content and options")...)...)
		result = rebind(result, source, path)
	}
	return result, nil
}

func (s *Service) compute(ctx context.Context, key string, source Source, path string, opts ingestspec.Options) (ingestspec.Result, error) {
	logger := logging.WithContext(ctx, s.logger)
	release, err := s.layout.Lock(ctx, key)
	if err != nil {
		return ingestspec.Result{}, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Debug("cache lock release failed", logging.Error(err))
		}
	}()

	// Another process may have finished while we waited for the lock.
	if result, ok := s.cache.Lookup(ctx, key, opts); ok {
		return rebind(result, source, path), nil
	}

	started := s.now()
	logger.Info("ingest started",
		logging.String(logging.FieldEventType, "ingest_start"),
		logging.String("source_path", path),
		logging.Float64("frame_interval_sec", opts.FrameIntervalSec),
		logging.Int("max_frames", opts.MaxFrames),
	)

	probe := s.probe(ctx, path)
	duration := probe.Value.MediaDuration()

	var (
		frameList  []frames.Frame
		track      Outcome[*audio.Track]
		transcript Outcome[*subtitles.Transcript]
	)
	entryDir := s.layout.EntryDir(key)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.frames.Extract(gctx, path, s.layout.FramesDir(key), opts.FrameIntervalSec, opts.MaxFrames)
		if err != nil {
			return fmt.Errorf("extract frames: %w", err)
		}
		frameList = list
		return nil
	})
	g.Go(func() error {
		t, err := s.audio.Extract(gctx, path, entryDir, opts.MaxAudioDurationSec, probe.Value.Streams)
		track = outcomeOf(t, err)
		return nil
	})
	g.Go(func() error {
		tr, err := s.transcripts.Load(gctx, path)
		transcript = outcomeOf(tr, err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ingestspec.Result{}, err
	}

	var cues []subtitles.Segment
	if transcript.Value != nil {
		cues = transcript.Value.Segments
	}
	result := ingestspec.Result{
		SourceID:           source.ID,
		SourceName:         source.label(),
		CacheKey:           key,
		SourcePath:         path,
		CreatedAt:          s.now().UTC(),
		CacheDir:           entryDir,
		DurationSec:        duration,
		FrameIntervalSec:   opts.FrameIntervalSec,
		SegmentDurationSec: opts.SegmentDurationSec,
		Frames:             frameList,
		Segments:           timeline.Build(frameList, cues, duration, opts.SegmentDurationSec),
		Audio:              track.Value,
		Transcript:         transcript.Value,
	}
	for _, step := range []struct {
		label string
		err   error
	}{
		{"duration unknown", probe.Err},
		{"audio unavailable", track.Err},
		{"transcript unavailable", transcript.Err},
	} {
		if step.err != nil {
			result.Warnings = append(result.Warnings, step.label+": "+step.err.Error())
		}
	}

	if err := s.cache.Persist(ctx, key, opts, result); err != nil {
		return ingestspec.Result{}, fmt.Errorf("persist manifest: %w", err)
	}
	logger.Info("ingest complete",
		logging.String(logging.FieldEventType, "ingest_complete"),
		logging.Float64("duration_sec", duration),
		logging.Int("frames", len(result.Frames)),
		logging.Int("segments", len(result.Segments)),
		logging.Bool("audio", result.Audio != nil),
		logging.Bool("transcript", result.Transcript != nil),
		logging.Int("warnings", len(result.Warnings)),
		logging.Duration("elapsed", s.now().Sub(started)),
	)
	s.prune(ctx, key)
	return result, nil
}

func (s *Service) probe(ctx context.Context, path string) Outcome[ffprobe.Result] {
	probeCtx := ctx
	if s.probeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, s.probeTimeout)
		defer cancel()
	}
	res, err := ffprobe.Inspect(probeCtx, s.runner, s.ffprobe, path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "probe failed; duration unknown",
			"probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.String(logging.FieldImpact, "timeline length comes from frames and transcript"),
		)
	}
	return outcomeOf(res, err)
}

func (s *Service) prune(ctx context.Context, keepKey string) {
	if !s.autoPrune || s.manager == nil {
		return
	}
	report, err := s.manager.Prune(ctx, keepKey)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "cache prune failed",
			"cache_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `vidingest cache stats` and free disk space"),
		)
		return
	}
	if len(report.Removed) > 0 {
		logging.WithContext(ctx, s.logger).Info("cache pruned",
			logging.Int("removed", len(report.Removed)),
			logging.Int64("freed_bytes", report.FreedBytes),
		)
	}
}

// rebind reports the cached artifact under the caller's source identity.
func rebind(result ingestspec.Result, source Source, path string) ingestspec.Result {
	result.SourceID = source.ID
	result.SourceName = source.label()
	result.SourcePath = path
	return result
}

func flightKey(key string, opts ingestspec.Options) string {
	return key + "|" +
		strconv.FormatFloat(opts.FrameIntervalSec, 'g', -1, 64) + "|" +
		strconv.Itoa(opts.MaxFrames) + "|" +
		strconv.FormatFloat(opts.SegmentDurationSec, 'g', -1, 64) + "|" +
		strconv.FormatFloat(opts.MaxAudioDurationSec, 'g', -1, 64)
}

func kindLabel(source Source) string {
	if source.Kind != "" {
		return source.Kind
	}
	if source.Ext != "" {
		return fileutil.KindForExt(source.Ext)
	}
	return fileutil.KindForPath(filepath.Base(source.Name))
}

func errorHint(err error) string {
	var exitErr *procrun.ExitError
	switch {
	case errors.Is(err, procrun.ErrToolUnavailable):
		return "install ffmpeg/ffprobe or set tools.ffmpeg and tools.ffprobe in config"
	case errors.As(err, &exitErr):
		return "inspect the tool output; the source may be corrupt or unsupported"
	case errors.Is(err, context.DeadlineExceeded):
		return "raise tools.probe_timeout or tools.ffmpeg_timeout"
	default:
		return "check logs for details"
	}
}
