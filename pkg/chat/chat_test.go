package chat

import "testing"

func TestTurnRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     TurnRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req:  TurnRequest{PlayerID: "player_1", NPCName: "Elena", Message: "Hello!"},
		},
		{
			name:    "empty message",
			req:     TurnRequest{PlayerID: "player_1", NPCName: "Elena"},
			wantErr: true,
		},
		{
			name:    "empty npc name",
			req:     TurnRequest{PlayerID: "player_1", Message: "Hello!"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionKey(t *testing.T) {
	req := TurnRequest{PlayerID: "player_0d084ad", NPCName: "Gareth"}
	if got := req.SessionKey(); got != "player_0d084ad#Gareth" {
		t.Errorf("SessionKey() = %q", got)
	}
}
