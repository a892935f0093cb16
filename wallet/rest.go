package wallet

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const timeout = 15

// Init sets up and starts the http/https server to service the RESTful API for the wallet service. If sslPort,
// sslCert and sslKey are informed, it will start an https (TLS) server on the specified endpoint.
func (w *Wallet) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	// API definition
	r := mux.NewRouter()
	r.HandleFunc("/", w.homeHandler)
	r.HandleFunc("/escrow/create", w.escrowCreateHandler).Methods("POST")      // open a new escrow
	r.HandleFunc("/escrow/{id}", w.escrowGetHandler).Methods("GET")            // get escrow record
	r.HandleFunc("/escrow/{id}/status", w.escrowStatusHandler).Methods("POST") // lifecycle transition
	r.HandleFunc("/chat/send", w.chatSendHandler).Methods("POST")              // append a chat message
	r.HandleFunc("/chat/{id}", w.chatGetHandler).Methods("GET")                // get escrow chat thread
	r.HandleFunc("/fraud/check", w.fraudCheckHandler).Methods("POST")          // score a transaction-intent
	r.HandleFunc("/transfers/estimate", w.estimateHandler).Methods("POST")     // gas fee estimate
	r.HandleFunc("/wallet/send", w.walletSendHandler).Methods("POST")          // notify-only stub
	r.HandleFunc("/wallet/receive", w.walletReceiveHandler).Methods("POST")    // notify-only stub
	http.Handle("/", r)

	// setup shutdown channel
	w.sc = make(chan struct{})

	// start http server
	if port != "" {
		w.s = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + port,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			err = w.s.ListenAndServe()
		}()

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		w.ss = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + sslPort,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			errTLS = w.ss.ListenAndServeTLS(sslCert, sslKey)
		}()

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-w.sc

	return fmt.Sprintf("shutdown http server:%e, https server:%e", err, errTLS)
}
