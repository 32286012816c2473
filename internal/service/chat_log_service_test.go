package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLogCreateAndGet(t *testing.T) {
	svc := &ChatLogService{db: newTestDB(t)}

	userLog, err := svc.CreateUserMessage("farmer", "小麦什么时候播种", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, userLog.ChatType)

	aiLog, err := svc.CreateAIMessage("farmer", "10月上旬", userLog.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, aiLog.ChatType)
	assert.Equal(t, userLog.ID, aiLog.ParentID)

	got, err := svc.GetChatLogByID(userLog.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "小麦什么时候播种", got.Content)
}

func TestChatLogGetMissing(t *testing.T) {
	svc := &ChatLogService{db: newTestDB(t)}

	got, err := svc.GetChatLogByID(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatLogDelete(t *testing.T) {
	svc := &ChatLogService{db: newTestDB(t)}

	log, err := svc.CreateUserMessage("farmer", "问题", 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChatLog(log.ID))

	got, err := svc.GetChatLogByID(log.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatLogListFilters(t *testing.T) {
	svc := &ChatLogService{db: newTestDB(t)}

	userLog, err := svc.CreateUserMessage("farmer", "问题", 5)
	require.NoError(t, err)
	_, err = svc.CreateAIMessage("farmer", "回答", userLog.ID, 5)
	require.NoError(t, err)
	_, err = svc.CreateUserMessage("other", "别人的问题", 6)
	require.NoError(t, err)

	logs, total, err := svc.ListChatLogs("farmer", 5, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	// 只要提问
	logs, total, err = svc.ListChatLogs("farmer", 5, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "问题", logs[0].Content)
}
