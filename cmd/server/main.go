package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lioia/corpus-pagerank/pkg/node"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	// Read environment variables
	env, err := utils.ReadEnvVars()
	utils.FailOnError("Failed to read environment variables", err)
	utils.InitLog(env.NodeLog, env.ServerLog)
	utils.FailOnError("Invalid LOG_LEVEL", utils.SetLogLevel(env.LogLevel))

	id, err := gonanoid.New()
	utils.FailOnError("Failed to generate node id", err)
	logger := utils.Logger("node").WithField("node", id)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limits := node.Limits{MaxSamples: env.MaxSamples, MaxRuns: env.MaxRuns, MaxSweeps: env.MaxSweeps}

	// gRPC Ranker service
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", env.Host, env.Port))
	utils.FailOnError("Failed to listen for node server", err)
	server, serveErr := node.Serve(lis, limits, logger)
	fmt.Printf("Starting node %s at %s\n", id, lis.Addr().String())

	// HTTP API
	var api *node.API
	if env.ApiPort != 0 {
		api = node.NewAPI(limits, logger)
		go func() {
			err := api.Start(fmt.Sprintf("%s:%d", env.Host, env.ApiPort))
			utils.FailOnError("Failed to serve HTTP API", err)
		}()
	}

	// Queue worker
	if env.RabbitHost != "" {
		queueConn, err := amqp.Dial(env.RabbitURL())
		utils.FailOnError("Could not connect to RabbitMQ", err)
		defer queueConn.Close()
		ch, err := queueConn.Channel()
		utils.FailOnError("Failed to open a channel to RabbitMQ", err)
		defer ch.Close()
		work, err := utils.DeclareQueue(env.WorkQueue, ch)
		utils.FailOnError("Failed to declare '%s' queue", err, env.WorkQueue)
		result, err := utils.DeclareQueue(env.ResultQueue, ch)
		utils.FailOnError("Failed to declare '%s' queue", err, env.ResultQueue)

		worker := &node.Worker{
			Channel:     ch,
			WorkQueue:   work.Name,
			ResultQueue: result.Name,
			Limits:      limits,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil {
				utils.WarnLog("worker", "Queue worker stopped: %v", err)
				stop()
			}
		}()
		utils.NodeLog("worker", "Consuming jobs from %s", work.Name)
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		utils.FailOnError("Failed to serve", err)
	}
	utils.ServerLog("Shutting down node %s", id)
	server.GracefulStop()
	if api != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			utils.WarnLog("api", "Shutdown: %v", err)
		}
	}
}
