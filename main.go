package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/visionedge/person-detection-service/config"
	"github.com/visionedge/person-detection-service/detections"
	"github.com/visionedge/person-detection-service/logger"
	"github.com/visionedge/person-detection-service/metrics"
)

// TensorInfo describes one model input or output for the /info endpoint.
type TensorInfo struct {
	Name  string  `json:"name"`
	Shape []int64 `json:"shape"`
	Type  string  `json:"type"`
}

// ModelInfo is the engine introspection captured once at startup.
type ModelInfo struct {
	ModelPath string       `json:"model_path"`
	Inputs    []TensorInfo `json:"inputs"`
	Outputs   []TensorInfo `json:"outputs"`
}

// AppState wires the loaded model into the handlers. Pool is nil while no
// model is loaded; everything else is read-only after startup.
type AppState struct {
	Config    *config.Config
	Pool      *SessionPool
	Pipeline  *detections.Pipeline
	ModelInfo *ModelInfo
	Metrics   *metrics.Metrics
}

// ModelLoaded reports whether a usable engine exists.
func (s *AppState) ModelLoaded() bool {
	return s.Pool != nil
}

func initSession(modelPath string) (*detections.ModelSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(runtime.NumCPU()); err != nil {
		return nil, err
	}
	if err := options.SetInterOpNumThreads(runtime.NumCPU()); err != nil {
		return nil, err
	}

	inputShape := ort.NewShape(1, 3, detections.InputSize, detections.InputSize)
	outputShape := ort.NewShape(1, 4+detections.NumClasses, detections.NumCandidates)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, err
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}

	return &detections.ModelSession{
		Session: session,
		Input:   inputTensor,
		Output:  outputTensor,
	}, nil
}

func introspectModel(modelPath string) (*ModelInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, err
	}

	info := &ModelInfo{ModelPath: modelPath}
	for _, in := range inputs {
		info.Inputs = append(info.Inputs, TensorInfo{
			Name:  in.Name,
			Shape: in.Dimensions,
			Type:  in.DataType.String(),
		})
	}
	for _, out := range outputs {
		info.Outputs = append(info.Outputs, TensorInfo{
			Name:  out.Name,
			Shape: out.Dimensions,
			Type:  out.DataType.String(),
		})
	}
	return info, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	if os.Getenv("DEBUG") == "true" {
		if err := logger.InitDevelopment(); err != nil {
			panic(err)
		}
	} else {
		if err := logger.InitProduction(); err != nil {
			panic(err)
		}
	}
	defer logger.Sync()
	log := logger.L()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	state := &AppState{
		Config:   cfg,
		Pipeline: detections.NewPipeline(),
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		// Matches the health contract: the server still comes up and
		// reports model_loaded:false until an operator fixes the deployment.
		log.Warn("model not found, starting without a loaded model",
			zap.String("model_path", cfg.ModelPath), zap.Error(err))
	} else {
		libPath, err := resolveSharedLibPath()
		if err != nil {
			log.Fatal("failed to locate onnxruntime library", zap.Error(err))
		}
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			log.Fatal("failed to initialize onnxruntime", zap.Error(err))
		}
		defer ort.DestroyEnvironment()

		info, err := introspectModel(cfg.ModelPath)
		if err != nil {
			log.Fatal("failed to read model metadata", zap.Error(err))
		}
		state.ModelInfo = info

		pool, err := NewSessionPool(cfg.PoolSize, func() (detections.Session, error) {
			return initSession(cfg.ModelPath)
		})
		if err != nil {
			log.Fatal("failed to create session pool", zap.Error(err))
		}
		defer pool.Destroy()
		state.Pool = pool

		log.Info("model loaded",
			zap.String("model_path", cfg.ModelPath),
			zap.Int("pool_size", cfg.PoolSize))
	}

	state.Metrics = metrics.New(func() float64 {
		if state.Pool == nil {
			return 0
		}
		return float64(state.Pool.InUse())
	})

	srv := &http.Server{
		Handler:      newRouter(state),
		Addr:         cfg.ListenAddr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
