package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperationMetrics_Record(t *testing.T) {
	var om OperationMetrics

	om.Record(time.Millisecond, http.StatusOK)
	om.Record(time.Millisecond, http.StatusCreated)
	om.Record(time.Millisecond, http.StatusNotFound)
	om.Record(time.Millisecond, http.StatusServiceUnavailable)
	om.Record(time.Millisecond, 0)

	assert.Equal(t, int64(5), om.Total)
	assert.Equal(t, int64(2), om.Success)
	assert.Equal(t, int64(1), om.Rejected)
	assert.Equal(t, int64(2), om.Error)
}

func TestOperationMetrics_Stats(t *testing.T) {
	var om OperationMetrics
	for i := 20; i >= 1; i-- {
		om.Record(time.Duration(i)*time.Millisecond, http.StatusOK)
	}

	avg, min, max, p50, p95 := om.Stats()
	assert.Equal(t, 10500*time.Microsecond, avg)
	assert.Equal(t, time.Millisecond, min)
	assert.Equal(t, 20*time.Millisecond, max)
	assert.Equal(t, 11*time.Millisecond, p50)
	assert.Equal(t, 20*time.Millisecond, p95)
}

func TestOperationMetrics_StatsEmpty(t *testing.T) {
	var om OperationMetrics
	avg, min, max, p50, p95 := om.Stats()
	assert.Zero(t, avg + min + max + p50 + p95)
}
