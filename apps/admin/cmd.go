package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB
	parser  *report.Parser
	groups  chat.GroupStore
	chatSvc *chat.Service
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  groups - list the class groups")
	fmt.Println("  parse -group NAME | -file PATH [-name NAME] - print the parsed data of a group")
	fmt.Println("  context -group NAME - print the knowledge document sent to the model")
	fmt.Println("  transcript -group NAME - print the chat transcript of a group")
	fmt.Println("  unblock -group NAME - lift the chat block of a group")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	parseCmd := flag.NewFlagSet("parse", flag.ContinueOnError)
	parseGroup := parseCmd.String("group", "", "The name of a configured group.")
	parseFile := parseCmd.String("file", "", "A CSV file holding one group block.")
	parseName := parseCmd.String("name", "", "The group name used with -file. Defaults to the file name.")

	contextCmd := flag.NewFlagSet("context", flag.ContinueOnError)
	contextGroup := contextCmd.String("group", "", "The name of a configured group.")

	transcriptCmd := flag.NewFlagSet("transcript", flag.ContinueOnError)
	transcriptGroup := transcriptCmd.String("group", "", "The name of a configured group.")

	unblockCmd := flag.NewFlagSet("unblock", flag.ContinueOnError)
	unblockGroup := unblockCmd.String("group", "", "The name of a configured group.")

	switch args[1] {
	case "groups":
		groups, err := cli.groups.All()
		if err != nil {
			return err
		}
		return cli.printJSON(report.Summarize(groups))

	case "parse":
		if err := parseCmd.Parse(args[2:]); err != nil {
			return err
		}
		switch {
		case *parseFile != "":
			return cli.parseFile(*parseFile, *parseName)
		case *parseGroup != "":
			gd, err := cli.groups.Group(*parseGroup)
			if err != nil {
				return err
			}
			return cli.printJSON(gd)
		default:
			parseCmd.Usage()
			return errHelp
		}

	case "context":
		if err := contextCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *contextGroup == "" {
			contextCmd.Usage()
			return errHelp
		}
		doc, err := cli.chatSvc.Gateway().Context(*contextGroup)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cli.out, doc)
		return err

	case "transcript":
		if err := transcriptCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *transcriptGroup == "" {
			transcriptCmd.Usage()
			return errHelp
		}
		msgs, err := cli.chatSvc.History(*transcriptGroup)
		if err != nil {
			return err
		}
		return cli.printJSON(msgs)

	case "unblock":
		if err := unblockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *unblockGroup == "" {
			unblockCmd.Usage()
			return errHelp
		}
		if _, err := cli.groups.Group(*unblockGroup); err != nil {
			return err
		}
		if err := cli.chatSvc.Unblock(*unblockGroup); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cli.out, "%s unblocked\n", *unblockGroup)
		return err

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) parseFile(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cli.printJSON(cli.parser.Parse(string(data), name))
}

// printJSON indents output for humans only.
func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	if f, ok := cli.out.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
