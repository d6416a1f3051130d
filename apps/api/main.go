package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/classreport/apps/api/echo"
	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
	llmsvc "github.com/trezcool/classreport/services/llm"
	logsvc "github.com/trezcool/classreport/services/logger"
	"github.com/trezcool/classreport/storage/database"
	sqlxrepos "github.com/trezcool/classreport/storage/database/sqlx"
	"github.com/trezcool/classreport/storage/groupdata"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up group data
	src := groupdata.NewSourceFromConfig(conf)
	store := report.NewStore(src, report.NewParser(report.Options{
		StudentExclusions: conf.Report.StudentExclusions,
		DescriptorMarkers: conf.Report.DescriptorMarkers,
	}), logger)
	handover, err := src.Handover()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading handover: %v", err), err)
	}

	// set up services
	ctx := context.Background()
	model, err := llmsvc.NewGeminiModel(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up model: %v", err), err)
	}
	gateway := chat.NewGateway(store, model, chat.GatewayConfig{
		SystemInstruction: conf.Chat.SystemPrompt,
		Handover:          handover,
		RecapTurns:        conf.Chat.RecapTurns,
		Limits: report.ContextLimits{
			MaxProgressNotes: conf.Chat.ProgressLimit,
			MaxBytes:         conf.Chat.ContextMaxBytes,
		},
		RevealTool: conf.Chat.RevealTool,
	})
	chatSvc := chat.NewService(
		gateway,
		sqlxrepos.NewChatRepository(db),
		logger,
		chat.ServiceConfig{BlockCooldown: conf.Chat.BlockCooldown, HistoryTurns: conf.Chat.HistoryTurns},
		nil,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// fail fast on broken group data
	groups, err := store.All()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading groups: %v", err), err)
	}
	logger.Info(fmt.Sprintf("%d groups loaded", len(groups)))

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewInt("groups").Set(int64(len(groups)))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Groups:     store,
			ChatSvc:    chatSvc,
			Handover:   handover,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
