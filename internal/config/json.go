package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Engine struct {
		Binary  string   `json:"binary"`
		Timeout Duration `json:"timeout"`
	} `json:"engine,omitempty"`

	Poll struct {
		Interval Duration `json:"interval"`
	} `json:"poll,omitempty"`

	Restore struct {
		Attempts         int      `json:"attempts"`
		BackoffBase      Duration `json:"backoff_base"`
		BackoffCap       Duration `json:"backoff_cap"`
		TerminateOnClose bool     `json:"terminate_on_close"`
	} `json:"restore,omitempty"`

	Rate struct {
		MinSampleInterval Duration `json:"min_sample_interval"`
	} `json:"rate,omitempty"`

	Storage struct {
		Backend string `json:"backend"`
		Path    string `json:"path"`
	} `json:"storage,omitempty"`

	Log struct {
		Level  string `json:"level"`
		ToFile bool   `json:"to_file"`
	} `json:"log,omitempty"`

	Workspaces struct {
		Folders []string `json:"folders"`
	} `json:"workspaces,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Engine: Engine{
			Binary:  jsonCfg.Engine.Binary,
			Timeout: time.Duration(jsonCfg.Engine.Timeout),
		},
		Poll: Poll{
			Interval: time.Duration(jsonCfg.Poll.Interval),
		},
		Restore: Restore{
			Attempts:         jsonCfg.Restore.Attempts,
			BackoffBase:      time.Duration(jsonCfg.Restore.BackoffBase),
			BackoffCap:       time.Duration(jsonCfg.Restore.BackoffCap),
			TerminateOnClose: jsonCfg.Restore.TerminateOnClose,
		},
		Rate: Rate{
			MinSampleInterval: time.Duration(jsonCfg.Rate.MinSampleInterval),
		},
		Storage: Storage{
			Backend: jsonCfg.Storage.Backend,
			Path:    jsonCfg.Storage.Path,
		},
		Log: Log{
			Level:  jsonCfg.Log.Level,
			ToFile: jsonCfg.Log.ToFile,
		},
		Workspaces: Workspaces{
			Folders: jsonCfg.Workspaces.Folders,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
