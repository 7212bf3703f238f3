package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"orders/internal/adapters/bus/kafkabus"
	"orders/internal/adapters/bus/membus"
	"orders/internal/adapters/bus/natsbus"
	"orders/internal/adapters/bus/redisbus"
	httpadapter "orders/internal/adapters/in/http"
	"orders/internal/adapters/out/messaging"
	"orders/internal/adapters/out/postgres"
	"orders/internal/core/application/eventhandlers"
	"orders/internal/core/application/inbound"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/ports"
	"orders/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	// memBus is shared by sender and receivers when TRANSPORT=memory.
	memBus *membus.Bus
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	root := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		gormDB: gormDB,
	}
	if gormDB != nil {
		root.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	}
	if cfg.Transport == TransportMemory {
		root.memBus = membus.New(membus.DefaultCapacity, cfg.MaxDeliveries)
	}
	return root
}

func (c *CompositionRoot) CreateMessageSender() (ports.MessageSender, error) {
	switch c.cfg.Transport {
	case TransportKafka:
		return kafkabus.NewSender(c.kafkaConfig())
	case TransportNATS:
		return natsbus.NewSender(c.natsConfig())
	case TransportRedis:
		return redisbus.NewSender(c.redisConfig(""))
	case TransportMemory:
		return c.memBus, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.cfg.Transport)
	}
}

// CreateMessageReceivers opens CONSUMER_SESSIONS independent receivers.
func (c *CompositionRoot) CreateMessageReceivers() ([]ports.MessageReceiver, error) {
	receivers := make([]ports.MessageReceiver, 0, c.cfg.ConsumerSessions)
	for i := range c.cfg.ConsumerSessions {
		receiver, err := c.createMessageReceiver(i)
		if err != nil {
			for _, opened := range receivers {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("open receiver %d: %w", i, err)
		}
		receivers = append(receivers, receiver)
	}
	return receivers, nil
}

func (c *CompositionRoot) createMessageReceiver(session int) (ports.MessageReceiver, error) {
	switch c.cfg.Transport {
	case TransportKafka:
		return kafkabus.NewReceiver(c.kafkaConfig())
	case TransportNATS:
		return natsbus.NewReceiver(c.natsConfig())
	case TransportRedis:
		return redisbus.NewReceiver(c.redisConfig(consumerName(session)))
	case TransportMemory:
		return c.memBus.Receiver(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.cfg.Transport)
	}
}

func (c *CompositionRoot) CreateOrderEventsBridge(sender ports.MessageSender) (*eventhandlers.OrderEventsBridge, error) {
	publisher, err := messaging.NewPublisher(sender)
	if err != nil {
		return nil, err
	}
	return eventhandlers.NewOrderEventsBridge(publisher, c.logger), nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler(events commands.DomainEventHandler) commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), events)
}

func (c *CompositionRoot) CreateProcessOrderCommandHandler(events commands.DomainEventHandler) commands.ProcessOrderCommandHandler {
	return commands.NewProcessOrderCommandHandler(c.orderUoWFactory(), events)
}

func (c *CompositionRoot) CreateShipOrderCommandHandler(events commands.DomainEventHandler) commands.ShipOrderCommandHandler {
	return commands.NewShipOrderCommandHandler(c.orderUoWFactory(), events)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler(events commands.DomainEventHandler) commands.CompleteOrderCommandHandler {
	return commands.NewCompleteOrderCommandHandler(c.orderUoWFactory(), events)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler(events commands.DomainEventHandler) commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), events)
}

func (c *CompositionRoot) CreateGetOrderByIDQueryHandler() queries.GetOrderByIDQueryHandler {
	return queries.NewGetOrderByIDQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer(events commands.DomainEventHandler) *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:   c.CreateCreateOrderCommandHandler(events),
		ProcessOrder:  c.CreateProcessOrderCommandHandler(events),
		ShipOrder:     c.CreateShipOrderCommandHandler(events),
		CompleteOrder: c.CreateCompleteOrderCommandHandler(events),
		CancelOrder:   c.CreateCancelOrderCommandHandler(events),
		GetOrderByID:  c.CreateGetOrderByIDQueryHandler(),
	}, c.logger)
}

// CreateDispatcher wires the notification handlers into a fresh registry.
func (c *CompositionRoot) CreateDispatcher() (*inbound.Dispatcher, error) {
	registry := inbound.NewRegistry()
	if err := inbound.NewNotificationHandlers(c.logger).RegisterAll(registry); err != nil {
		return nil, err
	}
	return inbound.NewDispatcher(registry, c.logger, inbound.WithHandlerTimeout(c.cfg.ShutdownTimeout)), nil
}

func (c *CompositionRoot) CreateJobManager(dispatcher *inbound.Dispatcher) *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewDispatcherStatsJob(dispatcher, c.cfg.StatsSchedule, c.logger),
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) kafkaConfig() kafkabus.Config {
	cfg := kafkabus.DefaultConfig()
	cfg.Brokers = c.cfg.KafkaBrokers
	cfg.Topic = c.cfg.KafkaTopic
	cfg.GroupID = c.cfg.KafkaConsumerGroup
	cfg.MaxDeliveries = c.cfg.MaxDeliveries
	return cfg
}

func (c *CompositionRoot) natsConfig() natsbus.Config {
	cfg := natsbus.DefaultConfig()
	cfg.URL = c.cfg.NATSURL
	cfg.Stream = c.cfg.NATSStream
	cfg.Subject = c.cfg.NATSSubject
	cfg.Durable = c.cfg.NATSDurable
	cfg.MaxDeliveries = c.cfg.MaxDeliveries
	return cfg
}

func (c *CompositionRoot) redisConfig(consumer string) redisbus.Config {
	cfg := redisbus.DefaultConfig()
	cfg.Addr = c.cfg.RedisAddr
	cfg.Password = c.cfg.RedisPassword
	cfg.DB = c.cfg.RedisDB
	cfg.Stream = c.cfg.RedisStream
	cfg.Group = c.cfg.RedisConsumerGroup
	cfg.MaxDeliveries = c.cfg.MaxDeliveries
	cfg.ClaimMinIdle = c.cfg.RedisClaimMinIdle
	if consumer != "" {
		cfg.Consumer = consumer
	}
	return cfg
}

// consumerName is unique per host and session within the consumer group.
func consumerName(session int) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "orders"
	}
	return fmt.Sprintf("%s-%d", host, session+1)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
