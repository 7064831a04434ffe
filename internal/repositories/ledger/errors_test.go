package ledger

import (
	"errors"
	"testing"

	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/stretchr/testify/require"
)

type rpcErrorMock struct {
	code int
	msg  string
}

func (e *rpcErrorMock) Error() string  { return e.msg }
func (e *rpcErrorMock) ErrorCode() int { return e.code }

type dataErrorMock struct {
	msg  string
	data interface{}
}

func (e *dataErrorMock) Error() string          { return e.msg }
func (e *dataErrorMock) ErrorData() interface{} { return e.data }

func TestClassifyErrorUserRejection(t *testing.T) {
	err := classifyError(&rpcErrorMock{code: 4001, msg: "user rejected transaction"})

	require.ErrorIs(t, err, mining.ErrSignerRejected)
}

func TestClassifyErrorAlreadyVerifiedRevert(t *testing.T) {
	err := classifyError(&dataErrorMock{
		msg:  "execution reverted",
		data: "execution reverted: Data already verified",
	})

	require.ErrorIs(t, err, mining.ErrAlreadyVerified)
}

func TestClassifyErrorAlreadyVerifiedInMessage(t *testing.T) {
	err := classifyError(errors.New("execution reverted: Data already verified"))

	require.ErrorIs(t, err, mining.ErrAlreadyVerified)
}

func TestClassifyErrorPassesThroughOthers(t *testing.T) {
	cause := errors.New("insufficient funds for gas")
	err := classifyError(cause)

	require.Equal(t, cause, err)
	require.NotErrorIs(t, err, mining.ErrSignerRejected)
	require.NotErrorIs(t, err, mining.ErrAlreadyVerified)
}

func TestClassifyErrorNil(t *testing.T) {
	require.NoError(t, classifyError(nil))
}
