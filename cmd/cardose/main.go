package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekkaida/Cardose-sub003/config"
	"github.com/nekkaida/Cardose-sub003/events"
	"github.com/nekkaida/Cardose-sub003/production"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/store"
	"github.com/nekkaida/Cardose-sub003/syncer"
	"github.com/nekkaida/Cardose-sub003/www"
)

func main() {
	configPath := flag.String("config", "cardose.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *port > 0 {
		cfg.Web.Port = *port
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	api := remote.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout)

	// Shop-floor event publisher. A broker outage is not fatal; the
	// publisher just drops events until the broker comes back.
	publisher := events.NewPublisher(&cfg.Events)
	defer publisher.Close()
	if err := publisher.Connect(); err != nil {
		log.Printf("events connect: %v", err)
	}

	svc := www.Services{
		Orders:         service.NewOrderService(db, api, publisher),
		Customers:      service.NewCustomerService(db, api),
		Inventory:      service.NewInventoryService(db, api),
		Production:     service.NewProductionService(db, api, publisher),
		Communications: service.NewCommunicationService(db, api),
		Invoices:       service.NewInvoiceService(db, api),
	}

	sync := syncer.New(db, cfg.Sync.DrainInterval, cfg.Sync.BatchSize, publisher,
		svc.Customers, svc.Orders, svc.Inventory, svc.Invoices, svc.Production, svc.Communications)
	sync.Start()
	defer sync.Stop()

	gen := production.NewGenerator(svc.Orders, svc.Inventory, svc.Production, publisher)

	router := www.NewRouter(db, svc, sync, gen, cfg.Web.SessionSecret)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Printf("Cardose listening on %s (api=%s)", addr, cfg.API.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}
}
