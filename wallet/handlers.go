package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/chain"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/escrow"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/fraud"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/gas"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
)

// EscrowReq contains the request data to open a new escrow. The risk signal fields are optional; front-ends that
// cannot supply them leave them false.
type EscrowReq struct {
	ClientAddress     string  `json:"client_address"`
	FreelancerAddress string  `json:"freelancer_address"`
	Amount            float64 `json:"amount"`
	TokenSymbol       string  `json:"token_symbol"`
	NewAddress        bool    `json:"is_new_address"`
	CountryMismatch   bool    `json:"country_mismatch"`
}

// ChatReq contains the request data to append a message to an escrow thread.
type ChatReq struct {
	EscrowID string `json:"escrow_id"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
}

// TransferReq contains the request data for fee estimates and the wallet notification stubs.
type TransferReq struct {
	FromAddress string  `json:"from_address,omitempty"`
	ToAddress   string  `json:"to_address,omitempty"`
	Amount      float64 `json:"amount"`
	TokenSymbol string  `json:"token_symbol,omitempty"`
}

// Errors returned to client requests.
var ErrBadRequest = errors.New("bad request")

// Response defines the data structure returned to the client making the http request.
type Response struct {
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

// httpStatus maps a service error to the status code replied to the client.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, escrow.ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, escrow.ErrFraudRejected):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, chain.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// homeHandler just replies a welcome message to the client.
func (w *Wallet) homeHandler(rw http.ResponseWriter, r *http.Request) {
	var res Response
	// log request
	log.Printf("httpreq from %v %s\n", r.RemoteAddr, r.RequestURI)
	// just reply a welcome message
	res.Body = "Hello, this is your QIE secure wallet backend!"
	// reply
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	_ = json.NewEncoder(rw).Encode(res)
}

// escrowCreated is the payload replied to a successful escrow creation.
type escrowCreated struct {
	EscrowID  string  `json:"escrow_id"`
	Status    string  `json:"status"`
	RiskScore float64 `json:"risk_score"`
}

// escrowCreateHandler opens a new escrow. The request is scored for fraud before anything is persisted: a blocked
// request is replied with the decision and no record is stored.
func (w *Wallet) escrowCreateHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var e store.Escrow

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusCreated)
			tmp, _ := json.Marshal(escrowCreated{EscrowID: e.ID, Status: e.Status, RiskScore: e.RiskScore})
			res.Body = string(tmp)
		}
		// log request and escrow id
		log.Printf("httpreq from %v %s escrow:%s err:%e\n", r.RemoteAddr, r.RequestURI, e.ID, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	// get request
	var req EscrowReq
	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding escrow request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	e, err = w.es.Create(r.Context(), escrow.CreateRequest{
		ClientAddress:     req.ClientAddress,
		FreelancerAddress: req.FreelancerAddress,
		Amount:            req.Amount,
		TokenSymbol:       req.TokenSymbol,
		NewAddress:        req.NewAddress,
		CountryMismatch:   req.CountryMismatch,
	})
}

// escrowGetHandler replies the full escrow record for the requested id.
func (w *Wallet) escrowGetHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var e store.Escrow

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(e)
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s escrow:%s err:%e\n", r.RemoteAddr, r.RequestURI, e.ID, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	e, err = w.es.Get(r.Context(), mux.Vars(r)["id"])
}

// escrowStatusHandler moves an escrow along its lifecycle. A transition not permitted from the escrow's current
// status is replied with a conflict.
func (w *Wallet) escrowStatusHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var e store.Escrow

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(e)
			res.Body = string(tmp)
		}
		// log request and status
		log.Printf("httpreq from %v %s escrow:%s status:%s err:%e\n", r.RemoteAddr, r.RequestURI, e.ID, e.Status, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var req struct {
		Status string `json:"status"`
	}

	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding status request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	e, err = w.es.Transition(r.Context(), mux.Vars(r)["id"], req.Status)
}

// chatAck is the payload replied to a stored chat message.
type chatAck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// chatSendHandler appends a message to an escrow thread.
func (w *Wallet) chatSendHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var m store.ChatMessage

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(chatAck{Status: "ok", Timestamp: m.Timestamp})
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s escrow:%s err:%e\n", r.RemoteAddr, r.RequestURI, m.EscrowID, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var req ChatReq
	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding chat request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	m, err = w.es.AppendMessage(r.Context(), req.EscrowID, req.Sender, req.Message)
}

// chatGetHandler replies the ordered chat thread of the requested escrow.
func (w *Wallet) chatGetHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var msgs []store.ChatMessage

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(msgs)
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s msgs:%d err:%e\n", r.RemoteAddr, r.RequestURI, len(msgs), err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	msgs, err = w.es.Messages(r.Context(), mux.Vars(r)["id"])
}

// fraudCheckHandler scores a transaction-intent and replies the score with the derived decision label.
func (w *Wallet) fraudCheckHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var result fraud.Result

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(result)
			res.Body = string(tmp)
		}
		// log request and decision
		log.Printf("httpreq from %v %s result:%+v err:%e\n", r.RemoteAddr, r.RequestURI, result, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var in fraud.Input
	if errDec := json.NewDecoder(r.Body).Decode(&in); errDec != nil {
		log.Printf("Error decoding fraud check request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	result = w.fs.Score(in)
}

// estimateHandler replies a gas fee estimate for a simple value transfer. The chain node is queried for the current
// gas price; node failures are replied as a bad gateway.
func (w *Wallet) estimateHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var est gas.Estimate

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(est)
			res.Body = string(tmp)
		}
		// log request and estimate
		log.Printf("httpreq from %v %s est:%+v err:%e\n", r.RemoteAddr, r.RequestURI, est, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var req TransferReq
	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding transfer request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	est, err = w.ge.Estimate(r.Context(), req.FromAddress, req.ToAddress, gas.ToWei(req.Amount))
}

// walletSendHandler is a notify-only stub: it alerts the configured sink about an outgoing transfer. Real signing
// and broadcast are out of scope for this backend.
func (w *Wallet) walletSendHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var req TransferReq

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(map[string]interface{}{"status": "sent", "amount": req.Amount, "to": req.ToAddress})
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s to:%s err:%e\n", r.RemoteAddr, r.RequestURI, req.ToAddress, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding send request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	w.nd.Enqueue(fmt.Sprintf("💸 SEND\nAmount: %g\nTo: %s", req.Amount, req.ToAddress))
}

// walletReceiveHandler is a notify-only stub: it alerts the configured sink about an incoming transfer.
func (w *Wallet) walletReceiveHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var req TransferReq

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(httpStatus(err))
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(map[string]interface{}{"status": "received", "amount": req.Amount, "from": req.FromAddress})
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s from:%s err:%e\n", r.RemoteAddr, r.RequestURI, req.FromAddress, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
		log.Printf("Error decoding receive request: %v\n", errDec)

		err = ErrBadRequest

		return
	}

	w.nd.Enqueue(fmt.Sprintf("📥 RECEIVE\nAmount: %g\nFrom: %s", req.Amount, req.FromAddress))
}
