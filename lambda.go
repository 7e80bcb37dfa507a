package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cuotos/slackstorm/handler"
	"github.com/cuotos/slackstorm/metrics"
)

type LambdaFunc func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error)

// LambdaHandler serves the relay from a Lambda function URL. GET lists the
// channels (behind authToken, like /channels), anything else is a dispatch
// request.
func LambdaHandler(h handler.RelayHandler, authToken string) LambdaFunc {
	return func(ctx context.Context, request events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {

		// function URL header names arrive lowercased, Set canonicalises them
		header := http.Header{}
		for k, v := range request.Headers {
			header.Set(k, v)
		}

		if request.RequestContext.HTTP.Method == http.MethodGet {
			if !authorized(header, authToken) {
				log.Println("[WARN] rejected channels request with bad auth token")
				return toLambdaResponse(handler.RelayResponse{
					StatusCode: http.StatusForbidden,
					Body:       []byte(http.StatusText(http.StatusForbidden)),
				}), nil
			}
			return toLambdaResponse(h.Channels(ctx)), nil
		}

		body := []byte(request.Body)
		if request.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(request.Body)
			if err != nil {
				return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest}, fmt.Errorf("failed to decode base64 body: %w", err)
			}
			body = decoded
		}

		resp, err := h.HandleEvent(ctx, header, body)
		if err != nil {
			log.Println("[ERROR] ", err)
		}

		return toLambdaResponse(resp), nil
	}
}

func toLambdaResponse(resp handler.RelayResponse) events.LambdaFunctionURLResponse {
	metrics.IncRelayRequest(strconv.Itoa(resp.StatusCode))

	return events.LambdaFunctionURLResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}
