package config

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	ent "XMPPAlertBot/internal/entity"

	"github.com/spf13/viper"
)

const (
	FormatShort = "short"
	FormatFull  = "full"
)

// Config holds everything read from the YAML file and the environment.
type Config struct {
	JID             string
	Password        string
	Recipients      []ent.Recipient
	MUCJID          string
	MUCBotNick      string
	ListenAddress   string
	ListenPort      int
	Format          string
	AmtoolAllowed   []string
	AlertmanagerURL string
	TextTemplate    string
	AmtoolPath      string
	AmtoolTimeout   time.Duration
}

// envBindings maps config keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"jid":              "XMPP_ID",
	"password":         "XMPP_PASS",
	"recipients":       "XMPP_RECIPIENTS",
	"amtool_allowed":   "XMPP_AMTOOL_ALLOWED",
	"alertmanager_url": "ALERTMANAGER_URL",
	"muc_jid":          "MUC_JID",
	"muc_bot_nick":     "MUC_BOT_NICK",
	"listen_address":   "WEBHOOK_HOST",
	"listen_port":      "WEBHOOK_PORT",
}

// Load reads the YAML config at path (skipped when empty) with
// environment variables taking precedence, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("listen_address", "127.0.0.1")
	v.SetDefault("listen_port", 8080)
	v.SetDefault("format", FormatShort)
	v.SetDefault("muc_bot_nick", "PrometheusAlerts")
	v.SetDefault("amtool_path", "amtool")
	v.SetDefault("amtool_timeout", "30s")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		JID:             v.GetString("jid"),
		Password:        v.GetString("password"),
		MUCJID:          v.GetString("muc_jid"),
		MUCBotNick:      v.GetString("muc_bot_nick"),
		ListenAddress:   v.GetString("listen_address"),
		ListenPort:      v.GetInt("listen_port"),
		Format:          v.GetString("format"),
		AmtoolAllowed:   stringList(v.Get("amtool_allowed")),
		AlertmanagerURL: v.GetString("alertmanager_url"),
		TextTemplate:    v.GetString("text_template"),
		AmtoolPath:      v.GetString("amtool_path"),
		AmtoolTimeout:   v.GetDuration("amtool_timeout"),
	}

	// `recipients` wins over the single `to_jid`; the MUC room, when
	// configured, is appended as a groupchat target.
	jids := stringList(v.Get("recipients"))
	if len(jids) == 0 {
		if to := v.GetString("to_jid"); to != "" {
			jids = []string{to}
		}
	}
	for _, jid := range jids {
		cfg.Recipients = append(cfg.Recipients, ent.Recipient{JID: jid, Type: ent.TypeChat})
	}
	if cfg.MUCJID != "" {
		cfg.Recipients = append(cfg.Recipients, ent.Recipient{JID: cfg.MUCJID, Type: ent.TypeGroupchat})
	}

	if cfg.Password == "" {
		if cmd := v.GetString("password_command"); cmd != "" {
			password, err := readPasswordFromCommand(cmd)
			if err != nil {
				return nil, err
			}
			cfg.Password = password
		}
	}

	if cfg.JID == "" {
		return nil, errors.New("no jid set in configuration (`jid`) or environment (`XMPP_ID`)")
	}
	if len(cfg.Recipients) == 0 {
		return nil, errors.New("no recipient set in configuration (`recipients`, `to_jid` or `muc_jid`) or environment (`XMPP_RECIPIENTS`)")
	}
	if cfg.Format != FormatShort && cfg.Format != FormatFull {
		return nil, fmt.Errorf("unsupported config format: %s", cfg.Format)
	}
	if len(cfg.AmtoolAllowed) == 0 {
		// The documented default: delivery recipients get management
		// rights. Only one-to-one chat JIDs qualify.
		for _, r := range cfg.Recipients {
			if r.Type == ent.TypeChat {
				cfg.AmtoolAllowed = append(cfg.AmtoolAllowed, r.JID)
			}
		}
	}

	return cfg, nil
}

// stringList accepts a YAML list, a single scalar, or a comma separated
// environment value.
func stringList(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}

// readPasswordFromCommand runs cmd through the shell and returns the
// first line of its output, whitespace stripped.
func readPasswordFromCommand(cmd string) (string, error) {
	out, err := exec.Command("/bin/sh", "-c", cmd).Output()
	if err != nil {
		return "", fmt.Errorf("password_command failed: %w", err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}
