package td2000

import (
	"fmt"

	"github.com/pkg/errors"
)

type ModelCode byte

const (
	ModelTD2020    ModelCode = 0x33
	ModelTD2120N   ModelCode = 0x35
	ModelTD2130N   ModelCode = 0x36
	ModelTD2030    ModelCode = 0x44
	ModelTD2125N   ModelCode = 0x45
	ModelTD2125NWB ModelCode = 0x46
	ModelTD2135N   ModelCode = 0x47
	ModelTD2135NWB ModelCode = 0x48
)

func ParseModelCode(b byte) (ModelCode, error) {
	switch m := ModelCode(b); m {
	case ModelTD2020, ModelTD2120N, ModelTD2130N, ModelTD2030,
		ModelTD2125N, ModelTD2125NWB, ModelTD2135N, ModelTD2135NWB:
		return m, nil
	}
	return 0, unknownCode("model", b)
}

func (m ModelCode) String() string {
	if model, ok := models[m]; ok {
		return model.Name
	}
	return fmt.Sprintf("ModelCode(0x%02X)", byte(m))
}

// MediaType as reported in the status frame and declared in print information.
type MediaType byte

const (
	MediaNone       MediaType = 0x00
	MediaContinuous MediaType = 0x4A
	MediaDieCut     MediaType = 0x4B
)

func ParseMediaType(b byte) (MediaType, error) {
	switch t := MediaType(b); t {
	case MediaNone, MediaContinuous, MediaDieCut:
		return t, nil
	}
	return 0, unknownCode("media type", b)
}

func (t MediaType) String() string {
	switch t {
	case MediaNone:
		return "none"
	case MediaContinuous:
		return "continuous"
	case MediaDieCut:
		return "die-cut"
	}
	return fmt.Sprintf("MediaType(0x%02X)", byte(t))
}

type StatusType byte

const (
	StatusReply             StatusType = 0x00
	StatusPrintingCompleted StatusType = 0x01
	StatusErrorOccurred     StatusType = 0x02
	StatusExitIfMode        StatusType = 0x03
	StatusTurnedOff         StatusType = 0x04
	StatusNotification      StatusType = 0x05
	StatusPhaseChange       StatusType = 0x06
)

func ParseStatusType(b byte) (StatusType, error) {
	if b <= byte(StatusPhaseChange) {
		return StatusType(b), nil
	}
	return 0, unknownCode("status type", b)
}

func (t StatusType) String() string {
	switch t {
	case StatusReply:
		return "reply"
	case StatusPrintingCompleted:
		return "printing completed"
	case StatusErrorOccurred:
		return "error occurred"
	case StatusExitIfMode:
		return "exit IF mode"
	case StatusTurnedOff:
		return "turned off"
	case StatusNotification:
		return "notification"
	case StatusPhaseChange:
		return "phase change"
	}
	return fmt.Sprintf("StatusType(0x%02X)", byte(t))
}

type Phase byte

const (
	PhaseReceiving Phase = 0x00
	PhasePrinting  Phase = 0x01
)

func ParsePhase(b byte) (Phase, error) {
	switch p := Phase(b); p {
	case PhaseReceiving, PhasePrinting:
		return p, nil
	}
	return 0, unknownCode("phase", b)
}

func (p Phase) String() string {
	switch p {
	case PhaseReceiving:
		return "receiving"
	case PhasePrinting:
		return "printing"
	}
	return fmt.Sprintf("Phase(0x%02X)", byte(p))
}

type Notification byte

const (
	NotificationNone            Notification = 0x00
	NotificationCoolingStarted  Notification = 0x03
	NotificationCoolingFinished Notification = 0x04
	NotificationWaitingPeeling  Notification = 0x05
	NotificationPeelingFinished Notification = 0x06
	NotificationPaused          Notification = 0x07
	NotificationPauseFinished   Notification = 0x08
)

func ParseNotification(b byte) (Notification, error) {
	switch n := Notification(b); n {
	case NotificationNone, NotificationCoolingStarted, NotificationCoolingFinished,
		NotificationWaitingPeeling, NotificationPeelingFinished,
		NotificationPaused, NotificationPauseFinished:
		return n, nil
	}
	return 0, unknownCode("notification", b)
}

func (n Notification) String() string {
	switch n {
	case NotificationNone:
		return "none"
	case NotificationCoolingStarted:
		return "cooling started"
	case NotificationCoolingFinished:
		return "cooling finished"
	case NotificationWaitingPeeling:
		return "waiting for peeling"
	case NotificationPeelingFinished:
		return "finished waiting for peeling"
	case NotificationPaused:
		return "paused"
	case NotificationPauseFinished:
		return "pause finished"
	}
	return fmt.Sprintf("Notification(0x%02X)", byte(n))
}

type BatteryLevel byte

const (
	BatteryFull             BatteryLevel = 0x00
	BatteryHalf             BatteryLevel = 0x01
	BatteryLow              BatteryLevel = 0x02
	BatteryChargingRequired BatteryLevel = 0x03
	BatteryACAdapter        BatteryLevel = 0x04
)

func ParseBatteryLevel(b byte) (BatteryLevel, error) {
	if b <= byte(BatteryACAdapter) {
		return BatteryLevel(b), nil
	}
	return 0, unknownCode("battery level", b)
}

func (l BatteryLevel) String() string {
	switch l {
	case BatteryFull:
		return "full"
	case BatteryHalf:
		return "half"
	case BatteryLow:
		return "low"
	case BatteryChargingRequired:
		return "charging required"
	case BatteryACAdapter:
		return "AC adapter"
	}
	return fmt.Sprintf("BatteryLevel(0x%02X)", byte(l))
}

// CommandMode is selected with the switch dynamic command mode frame.
type CommandMode byte

const (
	ModeESCP   CommandMode = 0x00
	ModeRaster CommandMode = 0x01
	ModePTouch CommandMode = 0x03
)

func (m CommandMode) String() string {
	switch m {
	case ModeESCP:
		return "ESC/P"
	case ModeRaster:
		return "raster"
	case ModePTouch:
		return "P-touch template"
	}
	return fmt.Sprintf("CommandMode(0x%02X)", byte(m))
}

type CompressionMode byte

const (
	CompressionNone CompressionMode = 0x00
	CompressionTIFF CompressionMode = 0x02
)

func ParseCompressionMode(s string) (CompressionMode, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "tiff", "packbits":
		return CompressionTIFF, nil
	}
	return 0, errors.Errorf("unknown compression mode %q", s)
}

func (m CompressionMode) String() string {
	switch m {
	case CompressionNone:
		return "none"
	case CompressionTIFF:
		return "tiff"
	}
	return fmt.Sprintf("CompressionMode(0x%02X)", byte(m))
}

type PageType byte

const (
	PageStarting PageType = 0x00
	PageOther    PageType = 0x01
)

// PrintInfoFlag marks which print information fields the printer should honour.
type PrintInfoFlag byte

const (
	PrintInfoKind        PrintInfoFlag = 0x02
	PrintInfoWidth       PrintInfoFlag = 0x04
	PrintInfoMediaLength PrintInfoFlag = 0x08
	PrintInfoQuality     PrintInfoFlag = 0x40
	PrintInfoRecovery    PrintInfoFlag = 0x80
)

// ModeSettings is the flag byte of the various mode settings frame.
type ModeSettings byte

const (
	ModeAutoCut ModeSettings = 0x40
	ModeMirror  ModeSettings = 0x80
)

func unknownCode(field string, b byte) error {
	return errors.Wrapf(ErrUnknownCode, "%s 0x%02X", field, b)
}
