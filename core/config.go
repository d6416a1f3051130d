package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Chat     ChatConfig
		Report   ReportConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Path          string // sqlite only
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ChatConfig struct {
		APIKey          string
		Model           string
		SystemPrompt    string
		BlockCooldown   time.Duration
		HistoryTurns    int
		RecapTurns      int
		ContextMaxBytes int
		ProgressLimit   int
		RevealTool      RevealToolConfig
	}

	// RevealToolConfig describes the optional tool answering with a fixed sentinel.
	// It is not declared to the model when Name is empty.
	RevealToolConfig struct {
		Name        string
		Description string
		Sentinel    string
	}

	ReportConfig struct {
		// DataDir overrides the bundled group data. It must hold groups.yaml.
		DataDir           string
		StudentExclusions []string
		DescriptorMarkers []string
	}
)

func (dbc DatabaseConfig) Address() string {
	if dbc.Port == "" {
		return dbc.Host
	}
	return dbc.Host + ":" + dbc.Port
}

const defaultSystemPrompt = "You are Max, an assistant for a language school. " +
	"Only answer questions about the class groups, their students, attendance, progress and the teacher's handover notes. " +
	"Warn users once when they go off-topic; if they persist, call the endConversation tool."

var (
	DefaultStudentExclusions = []string{
		"Reg", "Express", "Finance", "Business", "Terminales", "BASF", "FRESNO", "Omaha", "ALUR", "BECA",
	}
	DefaultDescriptorMarkers = []string{
		"regular", "finance material", "busines 5 express", "social 5 express",
	}
)

// NewConfig loads the app configuration from the environment.
// `ENV` is used as the env prefix, eg: DEV_CHAT_APIKEY
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "ClassReport")
	conf.SetDefault("build", "develop")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("database.engine", "sqlite")
	conf.SetDefault("database.path", "classreport.db")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "classreport")
	conf.SetDefault("database.user", "")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", false)

	conf.SetDefault("chat.apiKey", "")
	conf.SetDefault("chat.model", "gemini-2.5-flash")
	conf.SetDefault("chat.systemPrompt", defaultSystemPrompt)
	conf.SetDefault("chat.blockCooldown", 3*time.Hour)
	conf.SetDefault("chat.historyTurns", 6)
	conf.SetDefault("chat.recapTurns", 0)
	conf.SetDefault("chat.contextMaxBytes", 60000)
	conf.SetDefault("chat.progressLimit", 0)
	conf.SetDefault("chat.revealTool.name", "")
	conf.SetDefault("chat.revealTool.description", "")
	conf.SetDefault("chat.revealTool.sentinel", "")

	conf.SetDefault("report.dataDir", "")
	// report.studentExclusions & report.descriptorMarkers: comma separated, see listSetting

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, err := Getwd(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	conf.AutomaticEnv()
	conf.AllowEmptyEnv(true)

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Path:          conf.GetString("database.path"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Chat: ChatConfig{
			APIKey:          conf.GetString("chat.apiKey"),
			Model:           conf.GetString("chat.model"),
			SystemPrompt:    conf.GetString("chat.systemPrompt"),
			BlockCooldown:   conf.GetDuration("chat.blockCooldown"),
			HistoryTurns:    conf.GetInt("chat.historyTurns"),
			RecapTurns:      conf.GetInt("chat.recapTurns"),
			ContextMaxBytes: conf.GetInt("chat.contextMaxBytes"),
			ProgressLimit:   conf.GetInt("chat.progressLimit"),
			RevealTool: RevealToolConfig{
				Name:        conf.GetString("chat.revealTool.name"),
				Description: conf.GetString("chat.revealTool.description"),
				Sentinel:    conf.GetString("chat.revealTool.sentinel"),
			},
		},
		Report: ReportConfig{
			DataDir:           conf.GetString("report.dataDir"),
			StudentExclusions: listSetting(conf, "report.studentExclusions", DefaultStudentExclusions),
			DescriptorMarkers: listSetting(conf, "report.descriptorMarkers", DefaultDescriptorMarkers),
		},
	}
}

// listSetting splits a comma separated setting into trimmed items.
// def is returned when key is not set; a set but empty value is an empty list.
func listSetting(conf *viper.Viper, key string, def []string) []string {
	if !conf.IsSet(key) {
		return def
	}
	items := make([]string, 0)
	for _, item := range strings.Split(conf.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
