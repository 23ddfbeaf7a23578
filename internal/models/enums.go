package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned when a wire value does not name any enum member.
var ErrUnknownVariant = errors.New("unknown variant")

// enumCodec maps storage values (uppercase) to wire values (lowercase) and back.
type enumCodec[T ~string] struct {
	name     string
	toWire   map[T]string
	fromWire map[string]T
}

func newEnumCodec[T ~string](name string, members ...T) enumCodec[T] {
	c := enumCodec[T]{
		name:     name,
		toWire:   make(map[T]string, len(members)),
		fromWire: make(map[string]T, len(members)),
	}
	for _, m := range members {
		wire := strings.ToLower(string(m))
		c.toWire[m] = wire
		c.fromWire[wire] = m
	}
	return c
}

func (c enumCodec[T]) parse(wire string) (T, error) {
	if v, ok := c.fromWire[wire]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownVariant, c.name, wire)
}

func (c enumCodec[T]) wire(v T) string {
	return c.toWire[v]
}

func (c enumCodec[T]) valid(v T) bool {
	_, ok := c.toWire[v]
	return ok
}

// Role enum
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
)

var roleCodec = newEnumCodec("role", RolePatient, RoleDoctor)

// ParseRole converts a wire role ("patient", "doctor") to its stored form.
func ParseRole(wire string) (Role, error) { return roleCodec.parse(wire) }

// Wire returns the lowercase client representation.
func (r Role) Wire() string { return roleCodec.wire(r) }

func (r Role) Valid() bool { return roleCodec.valid(r) }

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

var appointmentStatusCodec = newEnumCodec("appointment status",
	StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled)

func ParseAppointmentStatus(wire string) (AppointmentStatus, error) {
	return appointmentStatusCodec.parse(wire)
}

func (s AppointmentStatus) Wire() string { return appointmentStatusCodec.wire(s) }

func (s AppointmentStatus) Valid() bool { return appointmentStatusCodec.valid(s) }

// AppointmentType distinguishes video consultations from clinic visits.
type AppointmentType string

const (
	AppointmentOnline  AppointmentType = "ONLINE"
	AppointmentOffline AppointmentType = "OFFLINE"
)

var appointmentTypeCodec = newEnumCodec("appointment type", AppointmentOnline, AppointmentOffline)

func ParseAppointmentType(wire string) (AppointmentType, error) {
	return appointmentTypeCodec.parse(wire)
}

func (t AppointmentType) Wire() string { return appointmentTypeCodec.wire(t) }

func (t AppointmentType) Valid() bool { return appointmentTypeCodec.valid(t) }

// NotificationType enum
type NotificationType string

const (
	NotificationAppointmentCreated   NotificationType = "APPOINTMENT_CREATED"
	NotificationAppointmentConfirmed NotificationType = "APPOINTMENT_CONFIRMED"
	NotificationAppointmentCancelled NotificationType = "APPOINTMENT_CANCELLED"
	NotificationAppointmentCompleted NotificationType = "APPOINTMENT_COMPLETED"
	NotificationAppointmentReminder  NotificationType = "APPOINTMENT_REMINDER"
	NotificationPrescriptionAdded    NotificationType = "PRESCRIPTION_ADDED"
	NotificationMedicalRecordAdded   NotificationType = "MEDICAL_RECORD_ADDED"
	NotificationSystem               NotificationType = "SYSTEM"
)

var notificationTypeCodec = newEnumCodec("notification type",
	NotificationAppointmentCreated,
	NotificationAppointmentConfirmed,
	NotificationAppointmentCancelled,
	NotificationAppointmentCompleted,
	NotificationAppointmentReminder,
	NotificationPrescriptionAdded,
	NotificationMedicalRecordAdded,
	NotificationSystem,
)

func ParseNotificationType(wire string) (NotificationType, error) {
	return notificationTypeCodec.parse(wire)
}

func (t NotificationType) Wire() string { return notificationTypeCodec.wire(t) }

func (t NotificationType) Valid() bool { return notificationTypeCodec.valid(t) }
