// Package httpclient provides the JSON HTTP transport used to call other
// services.
//
// A Client performs exactly one attempt per call. Transport failures are
// returned as *Error classified by ErrorCode; any HTTP response, including
// 4xx and 5xx, is returned as a *Response for the caller to interpret.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://auth.internal",
//	    Timeout: 10 * time.Second,
//	    Auth:    httpclient.APIKeyAuth(key),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/v1/login",
//	    Body:   credentials,
//	})
package httpclient
