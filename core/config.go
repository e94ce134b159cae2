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
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		Timezone   string
		LateWindow LateWindowConfig
		Cooldown   time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Firebase FirebaseConfig
		Blob     BlobConfig
		Web      WebConfig

		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string
	}

	LateWindowConfig struct {
		StartTime string
		LateTime  string
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	// DatabaseConfig selects the student document store.
	// Driver is one of "firestore" (default), "postgres" or "memory".
	DatabaseConfig struct {
		Driver     string
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool

		AdminUser     string
		AdminPassword string
	}

	FirebaseConfig struct {
		ProjectID       string
		CredentialsFile string
		CredentialsJSON string
		StorageBucket   string
	}

	// BlobConfig selects the blob store: "firebase" (default) or "memory".
	BlobConfig struct {
		Driver string
	}

	WebConfig struct {
		Root string
	}
)

func (c DatabaseConfig) Address() string {
	if c.Port == "" {
		return c.Host
	}
	return c.Host + ":" + c.Port
}

// Location returns the wall-clock timezone every scan is recorded in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone(c.Timezone, 8*60*60) // Asia/Manila has no DST
	}
	return loc
}

func (c *Config) DefaultFromEmail() string {
	return c.defaultFromEmail
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "LCCC Gate")
	conf.SetDefault("build", "develop")
	conf.SetDefault("workDir", Getwd())
	conf.SetDefault("timezone", "Asia/Manila")
	conf.SetDefault("lateWindow.startTime", "04:10")
	conf.SetDefault("lateWindow.lateTime", "07:10")
	conf.SetDefault("cooldown", time.Minute)
	conf.SetDefault("server.host", ":3001")
	conf.SetDefault("server.debugHost", ":4001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("database.driver", "firestore")
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "gatelog")
	conf.SetDefault("database.user", "gatelog")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("firebase.projectID", "")
	conf.SetDefault("firebase.credentialsFile", "")
	conf.SetDefault("firebase.credentialsJSON", "")
	conf.SetDefault("firebase.storageBucket", "")
	conf.SetDefault("blob.driver", "firebase")
	conf.SetDefault("web.root", "public")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("database.driver", "memory")
		conf.SetDefault("blob.driver", "memory")
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(conf.GetString("workDir"), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:      env,
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		AppName:  conf.GetString("appName"),
		Build:    conf.GetString("build"),
		WorkDir:  conf.GetString("workDir"),
		Timezone: conf.GetString("timezone"),
		LateWindow: LateWindowConfig{
			StartTime: conf.GetString("lateWindow.startTime"),
			LateTime:  conf.GetString("lateWindow.lateTime"),
		},
		Cooldown: conf.GetDuration("cooldown"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Driver:     conf.GetString("database.driver"),
			Engine:     conf.GetString("database.engine"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetString("database.port"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),

			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       conf.GetString("firebase.projectID"),
			CredentialsFile: conf.GetString("firebase.credentialsFile"),
			CredentialsJSON: conf.GetString("firebase.credentialsJSON"),
			StorageBucket:   conf.GetString("firebase.storageBucket"),
		},
		Blob:             BlobConfig{Driver: conf.GetString("blob.driver")},
		Web:              WebConfig{Root: conf.GetString("web.root")},
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
	}
}

// NewTestConfig returns a Config for tests: in-memory stores, fixed timezone, default late window.
func NewTestConfig() *Config {
	return &Config{
		Env:        "TEST",
		TestMode:   true,
		AppName:    "LCCC Gate",
		Build:      "test",
		Timezone:   "Asia/Manila",
		LateWindow: LateWindowConfig{StartTime: "04:10", LateTime: "07:10"},
		Cooldown:   time.Minute,
		Server:     ServerConfig{DisableReqLogs: true, ShutdownTimeout: time.Second},
		Database:   DatabaseConfig{Driver: "memory"},
		Blob:       BlobConfig{Driver: "memory"},
		Web:        WebConfig{Root: "public"},

		defaultFromEmail: "noreply@localhost",
	}
}
