// Package main: wallet backend service.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/chain/ethereum"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/config"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/escrow"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/fraud"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/gas"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify/amqp"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify/telegram"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/db"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/wallet"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100")
	flag.Parse()

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		panic(err)
	}

	log.Printf("Configuration:%+v", conf)

	timeout := time.Duration(conf.TimeoutMs) * time.Millisecond

	// connect to database
	dbConn, err := db.New(conf.DBType, conf.DBConn, conf.DBName)
	if err != nil {
		panic(err)
	}

	log.Printf("Connecting to database:%+v\n", conf.DBConn)

	// connect to the chain RPC node
	node, err := ethereum.Dial(conf.Node)
	if err != nil {
		panic(err)
	}
	defer node.Close()

	log.Printf("Chain RPC client loaded for %s", conf.Node)

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())
			http.ListenAndServe(":9100", h)
		}()
	}

	// select the notification sink
	var sink notify.Sink

	switch conf.Notify {
	case "telegram":
		sink = telegram.New(conf.TelegramToken, conf.TelegramChatID, timeout)
	case "amqp":
		if sink, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if sink, err = amqp.New(conf.MbConn); err != nil {
				panic(err)
			}
		}
	default:
		log.Printf("No notification sink for type: %s\n", conf.Notify)

		sink = notify.Nop{}
	}

	nd := notify.NewDispatcher(sink, conf.NotifyBacklog, timeout)

	// build the domain services
	fs := fraud.New(fraud.Thresholds{Low: conf.FraudLow, High: conf.FraudHigh})
	es := escrow.New(dbConn, fs, nd)
	ge := gas.New(node, conf.GasLimit, timeout)

	// create wallet service
	w := wallet.New(conf.DBType, dbConn, es, fs, ge, nd)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan int)

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all write operations to end
		w.Stop()
		close(finish)
	}()

	// boot notification
	nd.Enqueue("🚀 QIE Secure Wallet Backend Started Successfully!")

	// init RESTful API, wait for its return and log response
	log.Printf("Wallet: %s\n", w.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	<-finish
}
