// Package base contains the primitives of the RTSP/1.0 wire protocol: requests, responses,
// headers and interleaved frames. It has no knowledge of sessions, transports or timers.
package base

// Method is the method of a RTSP request.
type Method string

// RTSP methods supported by this package (RFC 2326 section 10).
const (
	Announce     Method = "ANNOUNCE"
	Describe     Method = "DESCRIBE"
	GetParameter Method = "GET_PARAMETER"
	Options      Method = "OPTIONS"
	Pause        Method = "PAUSE"
	Play         Method = "PLAY"
	Record       Method = "RECORD"
	Redirect     Method = "REDIRECT"
	Setup        Method = "SETUP"
	SetParameter Method = "SET_PARAMETER"
	Teardown     Method = "TEARDOWN"
)

// StatusCode is the status code of a RTSP response.
type StatusCode int

// standard status codes (RFC 2326 section 11).
const (
	StatusContinue                        StatusCode = 100
	StatusOK                              StatusCode = 200
	StatusMovedPermanently                StatusCode = 301
	StatusFound                           StatusCode = 302
	StatusSeeOther                        StatusCode = 303
	StatusNotModified                     StatusCode = 304
	StatusUseProxy                        StatusCode = 305
	StatusBadRequest                      StatusCode = 400
	StatusUnauthorized                    StatusCode = 401
	StatusPaymentRequired                 StatusCode = 402
	StatusForbidden                       StatusCode = 403
	StatusNotFound                        StatusCode = 404
	StatusMethodNotAllowed                StatusCode = 405
	StatusNotAcceptable                   StatusCode = 406
	StatusProxyAuthRequired               StatusCode = 407
	StatusRequestTimeout                  StatusCode = 408
	StatusGone                            StatusCode = 410
	StatusPreconditionFailed              StatusCode = 412
	StatusRequestEntityTooLarge           StatusCode = 413
	StatusRequestURITooLong               StatusCode = 414
	StatusUnsupportedMediaType            StatusCode = 415
	StatusParameterNotUnderstood          StatusCode = 451
	StatusNotEnoughBandwidth              StatusCode = 453
	StatusSessionNotFound                 StatusCode = 454
	StatusMethodNotValidInThisState       StatusCode = 455
	StatusHeaderFieldNotValidForResource  StatusCode = 456
	StatusInvalidRange                    StatusCode = 457
	StatusParameterIsReadOnly             StatusCode = 458
	StatusAggregateOperationNotAllowed    StatusCode = 459
	StatusOnlyAggregateOperationAllowed   StatusCode = 460
	StatusUnsupportedTransport            StatusCode = 461
	StatusDestinationUnreachable          StatusCode = 462
	StatusInternalServerError             StatusCode = 500
	StatusNotImplemented                  StatusCode = 501
	StatusBadGateway                      StatusCode = 502
	StatusServiceUnavailable              StatusCode = 503
	StatusGatewayTimeout                  StatusCode = 504
	StatusRTSPVersionNotSupported         StatusCode = 505
	StatusOptionNotSupported              StatusCode = 551
)

// StatusMessages maps a status code to its default reason phrase.
var StatusMessages = map[StatusCode]string{
	StatusContinue:                       "Continue",
	StatusOK:                             "OK",
	StatusMovedPermanently:               "Moved Permanently",
	StatusFound:                          "Found",
	StatusSeeOther:                       "See Other",
	StatusNotModified:                    "Not Modified",
	StatusUseProxy:                       "Use Proxy",
	StatusBadRequest:                     "Bad Request",
	StatusUnauthorized:                   "Unauthorized",
	StatusPaymentRequired:                "Payment Required",
	StatusForbidden:                      "Forbidden",
	StatusNotFound:                       "Not Found",
	StatusMethodNotAllowed:               "Method Not Allowed",
	StatusNotAcceptable:                  "Not Acceptable",
	StatusProxyAuthRequired:              "Proxy Auth Required",
	StatusRequestTimeout:                 "Request Timeout",
	StatusGone:                           "Gone",
	StatusPreconditionFailed:             "Precondition Failed",
	StatusRequestEntityTooLarge:          "Request Entity Too Large",
	StatusRequestURITooLong:              "Request URI Too Long",
	StatusUnsupportedMediaType:           "Unsupported Media Type",
	StatusParameterNotUnderstood:         "Parameter Not Understood",
	StatusNotEnoughBandwidth:             "Not Enough Bandwidth",
	StatusSessionNotFound:                "Session Not Found",
	StatusMethodNotValidInThisState:      "Method Not Valid In This State",
	StatusHeaderFieldNotValidForResource: "Header Field Not Valid for Resource",
	StatusInvalidRange:                   "Invalid Range",
	StatusParameterIsReadOnly:            "Parameter Is Read-Only",
	StatusAggregateOperationNotAllowed:   "Aggregate Operation Not Allowed",
	StatusOnlyAggregateOperationAllowed:  "Only Aggregate Operation Allowed",
	StatusUnsupportedTransport:           "Unsupported Transport",
	StatusDestinationUnreachable:         "Destination Unreachable",
	StatusInternalServerError:            "Internal Server Error",
	StatusNotImplemented:                 "Not Implemented",
	StatusBadGateway:                     "Bad Gateway",
	StatusServiceUnavailable:             "Service Unavailable",
	StatusGatewayTimeout:                 "Gateway Timeout",
	StatusRTSPVersionNotSupported:        "RTSP Version Not Supported",
	StatusOptionNotSupported:             "Option Not Supported",
}

const (
	rtspProtocol = "RTSP/1.0"

	// InterleavedFrameMagicByte is the first byte of an interleaved frame, as well as the
	// byte that tells the codec "this is not an RTSP message" (spec 4.1, NotRtsp).
	InterleavedFrameMagicByte = 0x24

	// DefaultMaxMessageBytes is MAX_MSG from spec 4.1: the default hard cap on a single
	// RTSP message (start-line + headers + body).
	DefaultMaxMessageBytes = 4 * 1024 * 1024
)
