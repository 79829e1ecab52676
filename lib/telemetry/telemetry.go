package telemetry

import (
	"context"
	"errors"
	"inzetbooster/lib/configutil"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	lock           sync.Mutex
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
)

func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry. without such a file spans
// go to the global no-op provider.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	cfg, err := configutil.ReadRecursively[config]("telemetry.json5")
	if errors.Is(err, os.ErrNotExist) {
		slog.DebugContext(ctx, "no telemetry.json5 found, tracing disabled")
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, cfg)
}

func Setup(ctx context.Context, serviceName string, cfg config) error {
	lock.Lock()
	defer lock.Unlock()

	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tp, err := newTraceProvider(ctx, r, cfg)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tp)
	tracerProvider = tp

	mp, err := newMetricProvider(ctx, r, cfg)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(mp)
	meterProvider = mp

	return nil
}

func Shutdown(ctx context.Context) error {
	lock.Lock()
	defer lock.Unlock()

	var errlist []error
	if tracerProvider != nil {
		errlist = append(errlist, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}
	if meterProvider != nil {
		errlist = append(errlist, meterProvider.Shutdown(ctx))
		meterProvider = nil
	}
	return errors.Join(errlist...)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(serviceName string) func() {
	lock.Lock()
	_, setupAlready := setupTestEnvironments[serviceName]
	setupTestEnvironments[serviceName] = true
	lock.Unlock()
	if setupAlready {
		return func() {}
	}

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}
