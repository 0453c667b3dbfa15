package publisher

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSRoutePublisher pushes winning route documents to downstream
// recording/visualization consumers over NATS.
type NATSRoutePublisher struct {
	nc *nats.Conn
}

func NewNATSRoutePublisher(url string) (*NATSRoutePublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("rail-route-service"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats publisher: connect %q: %w", url, err)
	}
	return &NATSRoutePublisher{nc: nc}, nil
}

func (p *NATSRoutePublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishBestRoute emits the serialized result on routes.best.<station>.
func (p *NATSRoutePublisher) PublishBestRoute(ctx context.Context, startStation string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "routes.best." + subjectToken(startStation)
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("nats publisher: publish %s: %w", subject, err)
	}
	return nil
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, wildcards, or path separators.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
