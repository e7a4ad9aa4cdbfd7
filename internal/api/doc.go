// Package api provides the Kalshi REST client used by the extraction
// pipeline.
//
// Endpoints:
//   - GET /markets          (cursor-paginated discovery)
//   - GET /markets/{ticker} (settlement result)
//   - GET /markets/trades   (trade history for one market)
//
// Production base URL: https://api.elections.kalshi.com/trade-api/v2
//
// Requests are authenticated with a bearer token. The client performs one
// request per call; rate limiting is handled by the callers through fixed
// inter-request delays.
package api
