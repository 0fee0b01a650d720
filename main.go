package main

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/beka-birhanu/udp-socket-manager/crypto"
	udppb "github.com/beka-birhanu/udp-socket-manager/encoding"
	udpsocket "github.com/beka-birhanu/udp-socket-manager/socket"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	socket_i "github.com/beka-birhanu/vinom-common/interfaces/socket"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/beka-birhanu/vinom-labyrinth/api"
	"github.com/beka-birhanu/vinom-labyrinth/config"
	"github.com/beka-birhanu/vinom-labyrinth/encoder"
	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// Record types of the packets broadcast to viewers.
const (
	cubeStateRecordType = 10
	cubeEndedRecordType = 11
)

// Global variables for dependencies
var (
	grpcConnListener   net.Listener
	grpcServer         *grpc.Server
	udpSocketManager   socket_i.ServerSocketManager
	cubeSessionManager *service.CubeSessionManager
	appLogger          general_i.Logger
)

// socketPublisher broadcasts cube updates over the UDP socket.
type socketPublisher struct {
	socket socket_i.ServerSocketManager
}

func (p socketPublisher) PublishState(viewers []uuid.UUID, payload []byte) {
	p.socket.BroadcastToClients(viewers, cubeStateRecordType, payload)
}

func (p socketPublisher) PublishEnd(viewers []uuid.UUID, payload []byte) {
	p.socket.BroadcastToClients(viewers, cubeEndedRecordType, payload)
}

func initUDPSocketManager() {
	serverAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.UdpPort))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Resolving server address: %v", err))
		os.Exit(1)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Generating RSA key: %v", err))
		os.Exit(1)
	}

	serverLogger, err := logger.New("SERVER-SOCKET", config.ColorBlue, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating UDP socket manager logger: %v", err))
		os.Exit(1)
	}
	server, err := udpsocket.NewServerSocketManager(
		udpsocket.ServerConfig{
			ListenAddr:  serverAddr,
			AsymmCrypto: crypto.NewRSA(privateKey),
			SymmCrypto:  crypto.NewAESCBC(),
			Encoder:     &udppb.Protobuf{},
			HMAC:        &crypto.HMAC{},
			Logger:      serverLogger,
		},
		udpsocket.ServerWithReadBufferSize(config.Envs.UDPBufferSize),
		udpsocket.ServerWithHeartbeatExpiration(time.Duration(config.Envs.UDPHeartbeatExpiration)*time.Millisecond),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating server UDP socket manager: %v", err))
		os.Exit(1)
	}

	udpSocketManager = server
	appLogger.Info("UDP Socket Manager initialized")
}

func initCubeSessionManager() {
	cubeLogger, err := logger.New("CUBE-MANAGER", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating cube session manager logger: %v", err))
		os.Exit(1)
	}
	manager, err := service.NewCubeSessionManager(
		&service.Config{
			Endpoint:         udpSocketManager,
			Publisher:        socketPublisher{socket: udpSocketManager},
			GeneratorFactory: labyrinth.New,
			Labyrinth: labyrinth.Config{
				Size:        config.Envs.CubeSize,
				QueueLimit:  config.Envs.CubeQueueLimit,
				LedgerLimit: config.Envs.CubeLedgerLimit,
			},
			CubeEncoder:  &encoder.Protobuf{},
			Logger:       cubeLogger,
			StepsPerTick: config.Envs.CubeStepsPerTick,
			Tick:         time.Duration(config.Envs.CubeTickMs) * time.Millisecond,
			Duration:     time.Duration(config.Envs.CubeSessionMinutes) * time.Minute,
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating cube session manager: %v", err))
		os.Exit(1)
	}

	udpSocketManager.SetClientRequestHandler(manager.HandleViewerRequest)
	udpSocketManager.SetClientAuthenticator(manager)
	cubeSessionManager = manager
	appLogger.Info("Cube Session Manager initialized")
}

func initSessionController() {
	grpcServer = grpc.NewServer()
	if err := api.RegisterNewSessionManager(grpcServer, cubeSessionManager); err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session controller initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	initUDPSocketManager()
	initCubeSessionManager()
	initSessionController()

	defer func() {
		// StopAll returns once every final snapshot has been broadcast.
		cubeSessionManager.StopAll()
		udpSocketManager.Stop()
	}()

	go udpSocketManager.Serve()
	appLogger.Info("UDP Socket Manager started serving")

	addr := fmt.Sprintf("%s:%v", config.Envs.ProxyIP, config.Envs.GrpcPort)
	var err error
	grpcConnListener, err = net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		os.Exit(1)
	}
	defer func() {
		_ = grpcConnListener.Close()
	}()

	appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", addr))
	if err := grpcServer.Serve(grpcConnListener); err != nil {
		appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
		os.Exit(1)
	}
}
