package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
	logsvc "github.com/trezcool/classreport/services/logger"
	"github.com/trezcool/classreport/storage/database"
	sqlxrepos "github.com/trezcool/classreport/storage/database/sqlx"
	"github.com/trezcool/classreport/storage/groupdata"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()

	// set up group data & services
	src := groupdata.NewSourceFromConfig(conf)
	store := report.NewStore(src, newParser(conf), logger)
	handover, err := src.Handover()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading handover: %v", err), err)
	}
	// admin commands never call the model
	gateway := chat.NewGateway(store, nil, chat.GatewayConfig{
		SystemInstruction: conf.Chat.SystemPrompt,
		Handover:          handover,
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

	// start CLI
	cli := commandLine{
		db:      db,
		parser:  newParser(conf),
		groups:  store,
		chatSvc: chatSvc,
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}

func newParser(conf *core.Config) *report.Parser {
	return report.NewParser(report.Options{
		StudentExclusions: conf.Report.StudentExclusions,
		DescriptorMarkers: conf.Report.DescriptorMarkers,
	})
}
