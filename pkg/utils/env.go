package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"golang.org/x/xerrors"
)

type EnvVars struct {
	Host        string // Address the node listens on
	Port        int    // gRPC port (0: any free port)
	ApiPort     int    // HTTP API port (0: API disabled)
	RabbitHost  string // RabbitMQ host (empty: no queue worker)
	RabbitUser  string
	RabbitPass  string
	WorkQueue   string
	ResultQueue string
	MaxSamples  int // per-request caps (0: built-in default)
	MaxRuns     int
	MaxSweeps   int
	NodeLog     bool
	ServerLog   bool
	LogLevel    string
}

// ReadEnvVars loads .env (without overriding the environment) and reads the
// node settings. Every malformed variable is reported.
func ReadEnvVars() (EnvVars, error) {
	_ = godotenv.Load()

	var err error
	port, e := readIntEnvVarOr("PORT", 0)
	if e != nil {
		err = multierror.Append(err, e)
	}
	apiPort, e := readIntEnvVarOr("API_PORT", 0)
	if e != nil {
		err = multierror.Append(err, e)
	}
	maxSamples, e := readIntEnvVarOr("MAX_SAMPLES", 0)
	if e != nil {
		err = multierror.Append(err, e)
	}
	maxRuns, e := readIntEnvVarOr("MAX_RUNS", 0)
	if e != nil {
		err = multierror.Append(err, e)
	}
	maxSweeps, e := readIntEnvVarOr("MAX_SWEEPS", 0)
	if e != nil {
		err = multierror.Append(err, e)
	}
	nodeLog, e := readBoolEnvVarOr("NODE_LOG", false)
	if e != nil {
		err = multierror.Append(err, e)
	}
	serverLog, e := readBoolEnvVarOr("SERVER_LOG", false)
	if e != nil {
		err = multierror.Append(err, e)
	}
	return EnvVars{
		Host:        readStringEnvVarOr("HOST", ""),
		Port:        port,
		ApiPort:     apiPort,
		RabbitHost:  readStringEnvVarOr("RABBIT_HOST", ""),
		RabbitUser:  readStringEnvVarOr("RABBIT_USER", "guest"),
		RabbitPass:  readStringEnvVarOr("RABBIT_PASSWORD", "guest"),
		WorkQueue:   readStringEnvVarOr("WORK_QUEUE", "work"),
		ResultQueue: readStringEnvVarOr("RESULT_QUEUE", "result"),
		MaxSamples:  maxSamples,
		MaxRuns:     maxRuns,
		MaxSweeps:   maxSweeps,
		NodeLog:     nodeLog,
		ServerLog:   serverLog,
		LogLevel:    readStringEnvVarOr("LOG_LEVEL", "info"),
	}, err
}

// RabbitURL returns the AMQP connection string for the configured broker.
func (e EnvVars) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", e.RabbitUser, e.RabbitPass, e.RabbitHost)
}

func readStringEnvVar(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", xerrors.Errorf("%s not set", name)
	}
	return value, nil
}

func readStringEnvVarOr(name string, or string) string {
	value, err := readStringEnvVar(name)
	if err != nil {
		value = or
	}
	return value
}

// readIntEnvVarOr falls back to or when name is unset, and fails when it is
// set to something that is not a number.
func readIntEnvVarOr(name string, or int) (int, error) {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return or, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return or, xerrors.Errorf("could not convert %s to a number: %v", name, err)
	}
	return value, nil
}

func readBoolEnvVarOr(name string, or bool) (bool, error) {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return or, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return or, xerrors.Errorf("could not convert %s to a boolean: %v", name, err)
	}
	return value, nil
}
