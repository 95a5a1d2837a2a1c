package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/miloszkon/supportbot/internal/domain"
	"github.com/miloszkon/supportbot/internal/platform"
)

type fakeProvisioner struct {
	mu         sync.Mutex
	createErr  error
	deleteErr  error
	nextID     int
	created    []domain.ChannelHandle
	deleted    []domain.ChannelHandle
	deleteCall int
}

func (f *fakeProvisioner) CreateSupportChannel(_ context.Context, requesterID, _, _ string) (domain.ChannelHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	handle := domain.ChannelHandle(fmt.Sprintf("chan-%s-%d", requesterID, f.nextID))
	f.created = append(f.created, handle)
	return handle, nil
}

func (f *fakeProvisioner) DeleteChannel(_ context.Context, handle domain.ChannelHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCall++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, handle)
	return nil
}

func (f *fakeProvisioner) deletions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCall
}

type channelSend struct {
	Handle  domain.ChannelHandle
	Content platform.Content
	Binding *platform.ReplyBinding
	Actions *platform.ChannelActions
}

type directSend struct {
	To      string
	Content platform.Content
}

type fakeGateway struct {
	mu           sync.Mutex
	channelErr   error
	dmErrByUser  map[string]error
	channelSends []channelSend
	directSends  []directSend
}

func (f *fakeGateway) SendToChannel(_ context.Context, handle domain.ChannelHandle, content platform.Content, binding *platform.ReplyBinding, actions *platform.ChannelActions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channelErr != nil {
		return f.channelErr
	}
	f.channelSends = append(f.channelSends, channelSend{Handle: handle, Content: content, Binding: binding, Actions: actions})
	return nil
}

func (f *fakeGateway) SendDirectMessage(_ context.Context, requesterID string, content platform.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.dmErrByUser[requesterID]; ok {
		return err
	}
	f.directSends = append(f.directSends, directSend{To: requesterID, Content: content})
	return nil
}

func (f *fakeGateway) sentToChannel(handle domain.ChannelHandle) []channelSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []channelSend
	for _, s := range f.channelSends {
		if s.Handle == handle {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeGateway) sentTo(requesterID string) []directSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []directSend
	for _, s := range f.directSends {
		if s.To == requesterID {
			out = append(out, s)
		}
	}
	return out
}

type fakeIdentity struct {
	managers map[string]bool
}

func (f *fakeIdentity) HasManagementCapability(_ context.Context, actorID string) (bool, error) {
	return f.managers[actorID], nil
}
