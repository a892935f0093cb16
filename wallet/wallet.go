// Package wallet implements the wallet backend service.
//
// This service implements a RESTful API for the wallet front-end: escrow creation and lifecycle, escrow chat,
// fraud checks and transfer fee estimates. Operational alerts go out through the notify dispatcher off the
// request path.
package wallet

import (
	"context"
	"log"
	"net/http"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/escrow"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/fraud"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/gas"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/db"
)

// Wallet contains the data necessary to deliver the service
type Wallet struct {
	dbtype string
	db     store.DB           // db connection
	es     *escrow.Service    // escrow lifecycle service
	fs     *fraud.Scorer      // fraud scoring heuristic
	ge     *gas.Estimator     // transfer fee estimator
	nd     *notify.Dispatcher // outbound alert dispatcher
	s      *http.Server       // http server
	ss     *http.Server       // https server
	sc     chan struct{}      // http server channel used for graceful shutdowns
}

// New returns a pointer to a new Wallet service
func New(dbtype string, dbConn store.DB, es *escrow.Service, fs *fraud.Scorer, ge *gas.Estimator,
	nd *notify.Dispatcher) *Wallet {
	return &Wallet{
		dbtype: dbtype,
		db:     dbConn,
		es:     es,
		fs:     fs,
		ge:     ge,
		nd:     nd,
	}
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the connections to the
// notification sink and database.
func (w *Wallet) Stop() {
	var err error
	// shutdown http server
	if w.s != nil {
		if err = w.s.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%e", err)
		}
	}
	if w.ss != nil {
		if err = w.ss.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%e", err)
		}
	}
	close(w.sc) // close server channels to indicate shutdowns have finished
	// stop the notification dispatcher, draining queued alerts
	if w.nd != nil {
		if err = w.nd.Close(); err != nil {
			log.Printf("Error closing notification dispatcher:%e", err)
		}
	}
	// close database
	if w.db != nil {
		err = db.Close(w.dbtype, w.db)
		log.Printf("Disconnecting %v database, err:%e\n", w.dbtype, err)
	}
}
