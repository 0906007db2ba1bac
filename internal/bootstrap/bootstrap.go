// Package bootstrap wires the platform and domain layers together and runs
// the service lifecycle: load config, bring up dependencies in order, serve,
// shut down cleanly.
package bootstrap

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "voicelock-go/internal/domain/auth"
	"voicelock-go/internal/domain/commands"
	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/session"
	"voicelock-go/internal/domain/speech"
	speechopenai "voicelock-go/internal/domain/speech/openai"
	"voicelock-go/internal/domain/task"
	"voicelock-go/internal/domain/token"
	"voicelock-go/internal/domain/token/serialport"
	tokenstore "voicelock-go/internal/domain/token/store"
	"voicelock-go/internal/domain/voiceout"
	voiceoutedge "voicelock-go/internal/domain/voiceout/edge"
	"voicelock-go/internal/domain/voiceprint"
	platformconfig "voicelock-go/internal/platform/config"
	platformerrors "voicelock-go/internal/platform/errors"
	platformlogging "voicelock-go/internal/platform/logging"
	platformstorage "voicelock-go/internal/platform/storage"
	httpwebapi "voicelock-go/internal/transport/http/webapi"
)

// Options are the command line knobs.
type Options struct {
	ConfigPath string
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Kind    platformerrors.Kind
	Execute stepFn
}

// appState accumulates initialized components across steps.
type appState struct {
	opts        Options
	config      *platformconfig.Config
	profile     platformconfig.LocaleProfile
	logger      *platformlogging.Logger
	bus         *eventbus.Bus
	audit       *eventbus.AuditRecorder
	notes       platformstorage.NoteRepository
	events      platformstorage.AuthEventRepository
	tokenStore  tokenstore.Store
	verifier    *token.Verifier
	prints      *voiceprint.Store
	extractor   *voiceprint.Extractor
	engine      *speech.Engine
	queue       *voiceout.Queue
	sess        *session.AuthenticationSession
	coordinator *domainauth.Coordinator
	enroller    *domainauth.Enroller
	alarms      *task.Scheduler
	dispatcher  *commands.Dispatcher
	web         *httpwebapi.Service
}

func initSteps() []initStep {
	return []initStep{
		{ID: "config:load", Kind: platformerrors.KindConfig, Execute: stepConfig},
		{ID: "logging:init", Kind: platformerrors.KindBootstrap, Execute: stepLogging},
		{ID: "storage:open", Kind: platformerrors.KindStorage, Execute: stepStorage},
		{ID: "token:init", Kind: platformerrors.KindToken, Execute: stepToken},
		{ID: "voiceprint:init", Kind: platformerrors.KindVoice, Execute: stepVoiceprint},
		{ID: "speech:init", Kind: platformerrors.KindSpeech, Execute: stepSpeech},
		{ID: "voiceout:init", Kind: platformerrors.KindSpeech, Execute: stepVoiceout},
		{ID: "auth:init", Kind: platformerrors.KindAuth, Execute: stepAuth},
		{ID: "commands:init", Kind: platformerrors.KindBootstrap, Execute: stepCommands},
		{ID: "web:init", Kind: platformerrors.KindTransport, Execute: stepWeb},
	}
}

func stepConfig(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithPath(state.opts.ConfigPath).Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.profile = result.Config.Profile()
	return nil
}

func stepLogging(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	logger.InfoTag("BOOT", "%s starting, locale %s",
		state.config.Server.Name, state.profile.LanguageTag)
	return nil
}

func stepStorage(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Storage.DBPath)
	if err != nil {
		return err
	}
	state.notes = platformstorage.NewNoteRepository(db)
	state.events = platformstorage.NewAuthEventRepository(db)

	state.bus = eventbus.New()
	state.audit, err = eventbus.NewAuditRecorder(state.bus, state.events, state.logger)
	if err != nil {
		return err
	}

	store, err := tokenstore.New(tokenstore.Config{
		Driver: state.config.Token.Store.Driver,
		Seed:   state.config.Token.Codes,
		Redis:  redisConfig(state.config.Token.Store),
	}, tokenstore.Dependencies{SQLiteDB: db})
	if err != nil {
		return err
	}
	state.tokenStore = store
	return nil
}

func redisConfig(cfg platformconfig.TokenStoreConfig) *tokenstore.RedisConfig {
	if cfg.Driver != tokenstore.DriverRedis {
		return nil
	}
	return &tokenstore.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	}
}

func stepToken(_ context.Context, state *appState) error {
	reader := serialport.New(serialport.Config{
		PortName:    state.config.Token.PortName,
		BaudRate:    state.config.Token.BaudRate,
		ReadTimeout: state.config.Token.ReadTimeout,
		SettleDelay: state.config.Token.SettleDelay,
	}, state.logger)
	state.verifier = token.NewVerifier(reader, state.tokenStore, state.logger)
	return nil
}

func stepVoiceprint(_ context.Context, state *appState) error {
	prints, err := voiceprint.NewStore(voiceprint.Config{
		Dir:    state.config.Voiceprint.Dir,
		Prefix: state.config.Voiceprint.Prefix,
		Ext:    state.config.Voiceprint.Ext,
	}, state.logger)
	if err != nil {
		return err
	}
	state.prints = prints

	extractorCfg := voiceprint.DefaultExtractorConfig()
	extractorCfg.SampleRate = state.config.Biometric.SampleRate
	extractorCfg.CoeffCount = state.config.Biometric.CoeffCount
	state.extractor = voiceprint.NewExtractor(extractorCfg)
	return nil
}

func stepSpeech(_ context.Context, state *appState) error {
	if p := state.config.Speech.Provider; p != "" && p != "openai" {
		return platformerrors.New(platformerrors.KindConfig, "speech:init",
			"unsupported speech provider: "+p)
	}
	transcriber, err := speechopenai.New(speechopenai.Config{
		APIKey:  state.config.Speech.APIKey,
		BaseURL: state.config.Speech.BaseURL,
		Model:   state.config.Speech.Model,
	}, state.logger)
	if err != nil {
		return err
	}
	recorder := speech.NewALSARecorder(state.config.Biometric.SampleRate, "")
	state.engine = speech.NewEngine(recorder, transcriber, speech.Config{
		CaptureTimeout: state.config.Speech.CaptureTimeout,
		PhraseLimit:    state.config.Speech.PhraseLimit,
	}, state.logger)
	return nil
}

func stepVoiceout(_ context.Context, state *appState) error {
	if p := state.config.Voice.Provider; p != "" && p != "edge" {
		return platformerrors.New(platformerrors.KindConfig, "voiceout:init",
			"unsupported voice provider: "+p)
	}
	synth, err := voiceoutedge.New(voiceoutedge.Config{
		Voice: state.profile.TTSVoice,
	}, state.logger)
	if err != nil {
		return err
	}
	state.queue = voiceout.NewQueue(synth, voiceout.NewALSAPlayer(""), state.logger)
	return nil
}

func stepAuth(_ context.Context, state *appState) error {
	state.sess = session.New()
	state.coordinator = domainauth.NewCoordinator(
		state.sess, state.verifier, state.engine, state.queue,
		state.prints, state.extractor, state.bus, state.profile, state.logger,
	)
	state.enroller = domainauth.NewEnroller(
		state.engine, state.queue, state.prints, state.extractor,
		state.bus, state.profile, state.logger,
	)
	return nil
}

func stepCommands(_ context.Context, state *appState) error {
	state.alarms = task.NewScheduler(state.queue, state.bus, state.logger)
	state.dispatcher = commands.NewDispatcher(
		state.sess, state.engine, state.queue, state.notes, state.alarms,
		state.enroller, commands.BrowserOpener{}, state.bus, state.profile,
		state.logger,
	)
	return nil
}

func stepWeb(_ context.Context, state *appState) error {
	if !state.config.Web.Enabled {
		return nil
	}
	state.web = httpwebapi.NewService(
		state.config.Web, state.sess, state.prints, state.events, state.logger,
	)
	return nil
}

// Run executes the full lifecycle and blocks until shutdown.
func Run(ctx context.Context, opts Options) error {
	state := &appState{opts: opts}

	for _, step := range initSteps() {
		if err := step.Execute(ctx, state); err != nil {
			if state.logger != nil {
				state.logger.ErrorTag("BOOT", "step %s failed: %v", step.ID, err)
			}
			return platformerrors.Wrap(step.Kind, step.ID, "initialization failed", err)
		}
		if state.logger != nil {
			state.logger.DebugTag("BOOT", "step %s done", step.ID)
		}
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	runCtx, cancel := context.WithCancel(groupCtx)
	defer cancel()

	if state.web != nil {
		group.Go(func() error {
			return state.web.Start(runCtx)
		})
	}
	group.Go(func() error {
		defer cancel()
		return state.runAssistant(runCtx)
	})

	err := group.Wait()
	state.shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	state.logger.InfoTag("BOOT", "stopped")
	state.logger.Close()
	return nil
}

// runAssistant is the single-goroutine voice loop: announce, enroll if the
// store is empty, authenticate until unlocked, then serve commands.
func (a *appState) runAssistant(ctx context.Context) error {
	a.queue.Say(ctx, a.profile.Prompt("startup"))

	if a.prints.IsEmpty() {
		a.logger.InfoTag("BOOT", "no enrolled users, entering first run enrollment")
		if err := a.enroller.FirstRun(ctx); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := a.coordinator.Authenticate(ctx); ok {
			break
		}
	}

	return a.dispatcher.Run(ctx)
}

func (a *appState) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.alarms != nil {
		a.alarms.Close()
	}
	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			a.logger.WarnTag("BOOT", "speech engine close: %v", err)
		}
	}
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.logger.WarnTag("BOOT", "playback queue close: %v", err)
		}
	}
	if a.tokenStore != nil {
		if err := a.tokenStore.Close(shutdownCtx); err != nil {
			a.logger.WarnTag("BOOT", "token store close: %v", err)
		}
	}
	if a.audit != nil {
		a.audit.Close()
	}
}

// Describe returns the ordered step IDs, used by the smoke test to pin the
// startup sequence.
func Describe() []string {
	steps := initSteps()
	ids := make([]string, 0, len(steps))
	for _, step := range steps {
		ids = append(ids, step.ID)
	}
	return ids
}
