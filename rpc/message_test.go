package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","method":"poll_output","id":3}`))
	require.NoError(t, err)
	assert.Equal(t, MethodPollOutput, req.Method)
	assert.True(t, req.HasID())
	assert.JSONEq(t, `3`, string(req.ID))
}

func TestParseRequestRejectsInvalidJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`{not json`))
	assert.Error(t, err)
}

func TestHasID(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"method":"poll_output"}`, false},
		{`{"method":"poll_output","id":null}`, false},
		{`{"method":"poll_output","id":0}`, true},
		{`{"method":"poll_output","id":"abc"}`, true},
	}
	for _, c := range cases {
		req, err := ParseRequest([]byte(c.body))
		require.NoError(t, err, c.body)
		assert.Equal(t, c.want, req.HasID(), c.body)
	}
}

func TestResponseEchoesIDVerbatim(t *testing.T) {
	resp := NewResponse(json.RawMessage(`"req-7"`), StatusResult{Type: PollWaiting})
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"req-7","result":{"type":"waiting_input_any"}}`, string(data))
}

func TestDecodeParamsMissingField(t *testing.T) {
	var params EOSParams
	err := decodeParams(MethodNotifyEOS, json.RawMessage(`{}`), []string{"stream_id"}, &params)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stream_id", verr.Field)
}

func TestDecodeParamsMistypedField(t *testing.T) {
	var params VideoParams
	raw := json.RawMessage(`{"stream_id":1,"width":"wide","height":1,"timestamp_us":0,"duration_us":0}`)
	err := decodeParams(MethodNotifyVideo, raw, []string{"stream_id", "width", "height", "timestamp_us", "duration_us"}, &params)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDecodeParamsAbsentParams(t *testing.T) {
	var params EOSParams
	err := decodeParams(MethodNotifyEOS, nil, []string{"stream_id"}, &params)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestVideoFrameResultKeepsZeroFields(t *testing.T) {
	data, err := json.Marshal(VideoFrameResult{
		Type: PollVideoFrame, StreamName: "cam0",
		Width: 2, Height: 1, TimestampUs: 0, DurationUs: 33333,
	})
	require.NoError(t, err)
	// timestamp_us: 0 must survive marshaling; zero is a real timestamp.
	assert.Contains(t, string(data), `"timestamp_us":0`)
}

func TestVideoParamsPayloadSize(t *testing.T) {
	p := VideoParams{Width: 640, Height: 480}
	assert.Equal(t, 640*480*3, p.PayloadSize())
}
