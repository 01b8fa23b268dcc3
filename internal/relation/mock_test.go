package relation

// Hand-maintained in the shape go.uber.org/mock/mockgen would generate for
// //go:generate mockgen -destination=mock_test.go -package=relation . Index
// kept inline (rather than invoking mockgen) since this module's build
// never shells out to code generators.

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockIndex is a mock of the Index interface.
type MockIndex struct {
	ctrl     *gomock.Controller
	recorder *MockIndexMockRecorder
}

// MockIndexMockRecorder is the mock recorder for MockIndex.
type MockIndexMockRecorder struct {
	mock *MockIndex
}

// NewMockIndex creates a new mock instance.
func NewMockIndex(ctrl *gomock.Controller) *MockIndex {
	mock := &MockIndex{ctrl: ctrl}
	mock.recorder = &MockIndexMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIndex) EXPECT() *MockIndexMockRecorder {
	return m.recorder
}

func (m *MockIndex) Insert(tuple Tuple) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Insert", tuple)
	ret0, _ := ret[0].(bool)
	return ret0
}

func (mr *MockIndexMockRecorder) Insert(tuple interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Insert", reflect.TypeOf((*MockIndex)(nil).Insert), tuple)
}

func (m *MockIndex) NewHintContext() any {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NewHintContext")
	ret0, _ := ret[0].(any)
	return ret0
}

func (mr *MockIndexMockRecorder) NewHintContext() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NewHintContext", reflect.TypeOf((*MockIndex)(nil).NewHintContext))
}

func (m *MockIndex) InsertCtx(tuple Tuple, ctx any) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertCtx", tuple, ctx)
	ret0, _ := ret[0].(bool)
	return ret0
}

func (mr *MockIndexMockRecorder) InsertCtx(tuple, ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertCtx", reflect.TypeOf((*MockIndex)(nil).InsertCtx), tuple, ctx)
}

func (m *MockIndex) InsertAll(other Index) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "InsertAll", other)
}

func (mr *MockIndexMockRecorder) InsertAll(other interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertAll", reflect.TypeOf((*MockIndex)(nil).InsertAll), other)
}

func (m *MockIndex) Contains(tuple Tuple) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Contains", tuple)
	ret0, _ := ret[0].(bool)
	return ret0
}

func (mr *MockIndexMockRecorder) Contains(tuple interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Contains", reflect.TypeOf((*MockIndex)(nil).Contains), tuple)
}

func (m *MockIndex) EqualRange(prefix Tuple) TupleIterator {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EqualRange", prefix)
	ret0, _ := ret[0].(TupleIterator)
	return ret0
}

func (mr *MockIndexMockRecorder) EqualRange(prefix interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EqualRange", reflect.TypeOf((*MockIndex)(nil).EqualRange), prefix)
}

func (m *MockIndex) Len() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Len")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockIndexMockRecorder) Len() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Len", reflect.TypeOf((*MockIndex)(nil).Len))
}

func (m *MockIndex) Clear() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Clear")
}

func (mr *MockIndexMockRecorder) Clear() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Clear", reflect.TypeOf((*MockIndex)(nil).Clear))
}

func (m *MockIndex) Permutation() []int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Permutation")
	ret0, _ := ret[0].([]int)
	return ret0
}

func (mr *MockIndexMockRecorder) Permutation() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Permutation", reflect.TypeOf((*MockIndex)(nil).Permutation))
}

func (m *MockIndex) Covers() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Covers")
	ret0, _ := ret[0].(int)
	return ret0
}

func (mr *MockIndexMockRecorder) Covers() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Covers", reflect.TypeOf((*MockIndex)(nil).Covers))
}
