// Package nlx402 provides a Go client SDK for NLx402 facilitators, which
// gate HTTP resources behind a pay-per-request (x402-style) flow.
//
// A paid access is four steps: get a quote, verify it, pay on-chain, and
// present the payment. This package performs steps one, two and four; the
// on-chain payment is up to the caller.
//
// Basic usage:
//
//	client, err := nlx402.New(nlx402.WithAPIKey("your-api-key"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get a quote and lock it
//	qv, err := client.GetAndVerifyQuote(ctx, nlx402.WithTotalPrice(nlx402.PriceFromFloat(0.002)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Pay qv.Quote.Amount() of qv.Quote.Mint() to qv.Quote.Recipient(), then:
//	res, err := client.GetPaidAccess(ctx, nlx402.PaymentProof{
//	    Tx:    txSignature,
//	    Nonce: qv.Quote.Nonce(),
//	})
//
// Responses are [Document] values: decoded JSON plus the original bytes, with
// typed accessors for the fields the protocol defines. Fields the facilitator
// adds later remain reachable through [Document.Get] and [Document.Decode].
//
// Errors fall into three kinds, all checkable with errors.As:
//
//   - [ConfigError]: a required API key is not set. Nothing was sent.
//   - [ValidationError]: a required argument is empty. Nothing was sent.
//   - [RequestError]: the facilitator answered with a non-2xx status.
//     StatusCode and Body carry the server's diagnostics.
//
// Transport failures are reported as [NetworkError]. Nothing is retried.
package nlx402
