// Package qiewallet and its sub-packages implement the backend service for the QIE secure wallet product.
/*
The backend provides a wallet service (package wallet) that implements a RESTful API for the wallet front-end:
opening and driving payment escrows between a client and a freelancer, the chat thread attached to each escrow,
a transaction risk scoring heuristic and gas fee estimates for transfers on the QIE network.

Architecture

Escrows and their chat threads are persisted through a database product agnostic layer (package lib/store) with
MongoDB as the primary implementation; PostgreSQL and an in-process store are also provided. The escrow lifecycle
(pending, funded, released, disputed, refunded, rejected) is enforced inside the store with a compare-and-swap on
the escrow status, so concurrent transitions on the same escrow serialize and exactly one wins.

Escrow creation runs the fraud scoring heuristic (package lib/fraud) synchronously: a request whose score crosses
the block threshold is rejected before anything is stored. The thresholds are configuration, not constants.

Fee estimates (package lib/gas) query the chain node for the current gas price through a narrow RPC interface
(package lib/chain) with a bounded timeout. Fees are computed with arbitrary-precision integers since wei amounts
routinely exceed 64 bits.

Operational alerts (new escrow, status change, wallet send/receive, service boot) are handed to a bounded
asynchronous dispatcher (package lib/notify) so delivery never blocks or fails an API call. Telegram and AMQP
sinks are provided.

The service can be started running cmd/wallet/main.go, configured via a JSON config file, a .env file or OS ENV
variables, and monitored via a Prometheus API by setting the flag "-m" at startup.
*/
package qiewallet
