package model

import "time"

// User types distinguish the two brand-side account kinds from creators.
// Campaign-level permissions are expressed separately through team roles;
// the user type only gates which surfaces an account may use at all.
const (
    UserTypeBrand   = "BRAND"
    UserTypeAgency  = "AGENCY"
    UserTypeCreator = "CREATOR"
)

// User represents a row in the `users` table. The password hash is bcrypt;
// reset code and expiry are null until a password reset is requested and
// cleared again once consumed.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, stored lowercased and trimmed.
//  Username     – display name, not unique.
//  PasswordHash – bcrypt hashed password.
//  UserType     – BRAND, AGENCY or CREATOR.
//  IsAdmin      – platform administrator flag.
//  ResetCode    – pending password-reset code (nullable).
//  ResetExpires – expiry of the reset code (nullable).
type User struct {
    ID           uint64     // users.id
    Email        string     // users.email
    Username     string     // users.username
    PasswordHash string     // users.password_hash
    UserType     string     // users.user_type
    IsAdmin      bool       // users.is_admin
    ResetCode    *string    // users.reset_code (nullable)
    ResetExpires *time.Time // users.reset_expires_at (nullable)
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}

// ValidUserType reports whether t is one of the accepted account types.
func ValidUserType(t string) bool {
    switch t {
    case UserTypeBrand, UserTypeAgency, UserTypeCreator:
        return true
    }
    return false
}
